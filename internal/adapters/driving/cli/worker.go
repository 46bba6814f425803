package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/calliope-labs/calliope/internal/core/domain"
)

var workerOnce bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Process the ingestion queue",
	Long: `Claims and ingests queued articles until the queue drains or the
process is interrupted. Multiple workers can run concurrently; each
claim is exclusive. With --once a single entry is processed.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().BoolVar(&workerOnce, "once", false, "process a single queue entry and exit")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if workerOnce {
		err := ingestionService.ProcessNext(ctx)
		if errors.Is(err, domain.ErrQueueEmpty) {
			cmd.Println("Queue is empty.")
			return nil
		}
		if err != nil {
			return fmt.Errorf("worker failed: %w", err)
		}
		cmd.Println("Processed one queue entry.")
		return nil
	}

	cmd.Println("Processing queue...")
	err := ingestionService.Run(ctx)
	if errors.Is(err, context.Canceled) {
		cmd.Println("Interrupted.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("worker failed: %w", err)
	}
	cmd.Println("Queue drained.")
	return nil
}
