package driving

import (
	"context"

	"github.com/calliope-labs/calliope/internal/core/domain"
)

// SearchService provides hybrid retrieval to external actors.
type SearchService interface {
	// Search performs hybrid search across all ingested articles.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.HybridSearchResult, error)

	// Neighbors returns the chunks adjacent to the given chunk within
	// its section, per the expansion rules applied to search results.
	Neighbors(ctx context.Context, chunkID string) ([]domain.Chunk, error)
}
