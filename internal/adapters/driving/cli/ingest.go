package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestQueue bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [article-id]",
	Short: "Ingest an article",
	Long: `Fetches an article, normalises and chunks it, embeds the chunks
and stores them, replacing any previous ingestion of the article.
With --queue the article is scheduled for a background worker instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestQueue, "queue", false, "enqueue for background ingestion instead of ingesting now")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	articleID := args[0]

	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	ctx := context.Background()

	if ingestQueue {
		if err := ingestionService.Enqueue(ctx, articleID); err != nil {
			return fmt.Errorf("enqueue failed: %w", err)
		}
		cmd.Printf("Enqueued %s for ingestion.\n", articleID)
		return nil
	}

	cmd.Printf("Ingesting %s...\n", articleID)
	if err := ingestionService.Ingest(ctx, articleID); err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	cmd.Printf("Article %s ingested successfully.\n", articleID)
	return nil
}
