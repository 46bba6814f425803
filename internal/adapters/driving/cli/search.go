package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calliope-labs/calliope/internal/core/domain"
)

var (
	searchLimit     int
	searchNeighbors bool
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search ingested articles",
	Long: `Performs hybrid search across all ingested articles.
Combines keyword (BM25) and semantic (vector) search, fuses the two
rankings by reciprocal rank and reranks the fused candidates.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchNeighbors, "neighbors", false, "include adjacent chunks with each result")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()
	opts := domain.SearchOptions{
		TopK:      searchLimit,
		Neighbors: searchNeighbors,
	}

	results, err := searchService.Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.HybridSearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.HybridSearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]

		heading := r.ArticleTitle
		if r.SectionHeading != "" {
			heading = fmt.Sprintf("%s / %s %s", r.ArticleTitle, r.SectionNumber, r.SectionHeading)
		}

		cmd.Printf("  [%d] %s (%.4f)\n", i+1, heading, r.RRFScore)
		cmd.Printf("      %s\n", r.ChunkID)

		text := r.GenerationText
		if text == "" {
			text = r.ChunkText
		}
		if text != "" {
			cmd.Printf("      %s\n", snippet(text))
		}
		cmd.Println()
	}

	return nil
}

// snippet trims a chunk to a single display line.
func snippet(text string) string {
	const maxLen = 160
	for i, r := range text {
		if r == '\n' || i >= maxLen {
			return text[:i] + "..."
		}
	}
	return text
}
