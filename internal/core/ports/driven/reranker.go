package driven

import "context"

// Reranker reorders candidate texts by relevance to a query using a
// cross-encoder model. This is an optional service - when nil, the
// fused ranking is returned as-is.
type Reranker interface {
	// Rerank scores documents against the query and returns their
	// original indices in descending relevance order, truncated to topN.
	Rerank(ctx context.Context, query string, documents []string, topN int) ([]RankedIndex, error)

	// Close releases resources.
	Close() error
}

// RankedIndex is one reranked entry.
type RankedIndex struct {
	// Index is the position of the document in the input slice.
	Index int

	// Score is the model's relevance score.
	Score float64
}
