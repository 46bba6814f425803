package main

import (
	"os"

	"github.com/calliope-labs/calliope/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
