package driven

import "context"

// VectorIndex provides semantic similarity search operations.
// Backed by Qdrant for approximate nearest neighbour search.
type VectorIndex interface {
	// Upsert inserts or replaces vectors for the given chunk IDs.
	// Points and ids are parallel slices.
	Upsert(ctx context.Context, ids []string, vectors [][]float32) error

	// DeleteByArticle removes all vectors belonging to an article.
	DeleteByArticle(ctx context.Context, articleID string) error

	// Search finds the k nearest neighbours to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
