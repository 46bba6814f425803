package domain

// Default fan-out and fusion parameters for hybrid search.
const (
	DefaultVectorTopK = 50
	DefaultBM25TopK   = 50
	DefaultRRFTopK    = 25
	DefaultTopK       = 8

	// RRFK is the reciprocal rank fusion constant: each source
	// contributes 1/(RRFK + rank + 1) per result.
	RRFK = 60
)

// SearchOptions configures a hybrid search query.
type SearchOptions struct {
	// VectorTopK is the nearest-neighbour fan-out against the vector index.
	VectorTopK int

	// BM25TopK is the lexical fan-out against the full-text index.
	BM25TopK int

	// RRFTopK is how many fused candidates survive rank fusion.
	RRFTopK int

	// TopK is the final result count after reranking.
	TopK int

	// Neighbors expands each result with adjacent chunks from the
	// same section.
	Neighbors bool
}

// WithDefaults fills unset options with the package defaults.
func (o SearchOptions) WithDefaults() SearchOptions {
	if o.VectorTopK <= 0 {
		o.VectorTopK = DefaultVectorTopK
	}
	if o.BM25TopK <= 0 {
		o.BM25TopK = DefaultBM25TopK
	}
	if o.RRFTopK <= 0 {
		o.RRFTopK = DefaultRRFTopK
	}
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	return o
}

// HybridSearchResult is a single query-scoped search hit. It is never
// persisted.
type HybridSearchResult struct {
	ChunkID        string
	ArticleID      string
	ArticleTitle   string
	SectionNumber  string
	SectionHeading string

	// RRFScore is the summed reciprocal-rank contribution from the
	// vector and lexical sources.
	RRFScore float64

	// RerankScore is the cross-encoder relevance score.
	RerankScore float64

	// ChunkText is the retrieval-format text the scores were computed on.
	ChunkText string

	// GenerationText is the display/LLM-context text from the blob store.
	GenerationText string

	// NeighborTexts holds adjacent chunks' generation text when
	// neighbor expansion was requested, ordered by chunk index.
	NeighborTexts []string
}
