package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calliope-labs/calliope/internal/core/domain"
)

var (
	queueStatus string
	queueLimit  int
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List ingestion queue entries",
	Long: `Lists ingestion queue entries, most recent first.
Use --status to filter by state (pending, processing, completed, failed).`,
	RunE: runQueue,
}

func init() {
	queueCmd.Flags().StringVar(&queueStatus, "status", "", "filter by entry status")
	queueCmd.Flags().IntVarP(&queueLimit, "limit", "n", 0, "maximum number of entries")
	rootCmd.AddCommand(queueCmd)
}

func runQueue(cmd *cobra.Command, _ []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	entries, err := ingestionService.Queue(context.Background(), domain.IngestionStatus(queueStatus), queueLimit)
	if err != nil {
		return fmt.Errorf("listing queue failed: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("Queue is empty.")
		return nil
	}

	for i := range entries {
		e := &entries[i]
		cmd.Printf("  %-12s %s", e.Status, e.ArticleID)
		if e.RetryCount > 0 {
			cmd.Printf(" (retries: %d)", e.RetryCount)
		}
		cmd.Println()
		if e.ErrorMessage != "" {
			cmd.Printf("               %s\n", e.ErrorMessage)
		}
	}
	return nil
}
