package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var neighborsCmd = &cobra.Command{
	Use:   "neighbors [chunk-id]",
	Short: "Show the chunks adjacent to a chunk",
	Long: `Prints the chunks adjacent to the given chunk within its section,
using the same expansion rules hybrid search applies to results.`,
	Args: cobra.ExactArgs(1),
	RunE: runNeighbors,
}

func init() {
	rootCmd.AddCommand(neighborsCmd)
}

func runNeighbors(cmd *cobra.Command, args []string) error {
	chunkID := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	neighbors, err := searchService.Neighbors(context.Background(), chunkID)
	if err != nil {
		return fmt.Errorf("neighbor lookup failed: %w", err)
	}

	if len(neighbors) == 0 {
		cmd.Println("No neighbors.")
		return nil
	}

	for i := range neighbors {
		cmd.Printf("%s\n", neighbors[i].ID)
		cmd.Printf("  %s\n", snippet(neighbors[i].Text))
	}
	return nil
}
