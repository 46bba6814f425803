package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/calliope-labs/calliope/internal/core/domain"
	"github.com/calliope-labs/calliope/internal/core/ports/driven"
	"github.com/calliope-labs/calliope/internal/core/ports/driving"
	"github.com/calliope-labs/calliope/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// scoredChunk holds intermediate search results before hydration.
type scoredChunk struct {
	chunkID string
	score   float64
}

// SearchService provides hybrid retrieval over ingested chunks.
type SearchService struct {
	store    driven.ChunkStore
	vectors  driven.VectorIndex
	embedder driven.EmbeddingService
	reranker driven.Reranker
	blobs    driven.BlobStore
}

// NewSearchService creates a new search service.
// The reranker and blobs parameters are optional (can be nil).
func NewSearchService(
	store driven.ChunkStore,
	vectors driven.VectorIndex,
	embedder driven.EmbeddingService,
	reranker driven.Reranker,
	blobs driven.BlobStore,
) *SearchService {
	return &SearchService{
		store:    store,
		vectors:  vectors,
		embedder: embedder,
		reranker: reranker,
		blobs:    blobs,
	}
}

// nonWord matches everything the lexical query syntax can choke on.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// sanitizeQuery reduces a free-form query to a safe lowercase token
// set for the full-text match syntax. Lowercasing also neutralises
// the uppercase query operators (OR, NEAR, NOT).
func sanitizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(nonWord.ReplaceAllString(query, " ")), " "))
}

// Search performs hybrid search across all ingested articles.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.HybridSearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.HybridSearchResult{}, nil
	}

	opts = opts.WithDefaults()

	// Vector and lexical queries are independent; run them in parallel.
	var vectorHits, lexicalHits []scoredChunk
	var vectorErr, lexicalErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		vectorHits, vectorErr = s.vectorSearch(ctx, query, opts.VectorTopK)
	}()

	go func() {
		defer wg.Done()
		lexicalHits, lexicalErr = s.lexicalSearch(ctx, query, opts.BM25TopK)
	}()

	wg.Wait()

	if vectorErr != nil {
		return nil, fmt.Errorf("vector search: %w", vectorErr)
	}
	if lexicalErr != nil {
		return nil, fmt.Errorf("lexical search: %w", lexicalErr)
	}

	logger.Debug("Fusing %d vector + %d lexical hits", len(vectorHits), len(lexicalHits))
	fused := mergeWithRRF(vectorHits, lexicalHits, domain.RRFK)
	if len(fused) > opts.RRFTopK {
		fused = fused[:opts.RRFTopK]
	}
	logger.Debug("Fused candidates: %d", len(fused))

	results, err := s.hydrate(ctx, fused)
	if err != nil {
		return nil, fmt.Errorf("fetch chunk records: %w", err)
	}

	results, err = s.rerank(ctx, query, results, opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}

	s.attachGenerationText(ctx, results)

	if opts.Neighbors {
		s.expandNeighbors(ctx, results)
	}

	logger.Info("Final results: %d", len(results))
	return results, nil
}

// vectorSearch embeds the query and asks the vector index for the
// nearest chunks.
func (s *SearchService) vectorSearch(ctx context.Context, query string, k int) ([]scoredChunk, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.vectors.Search(ctx, embedding, k)
	if err != nil {
		return nil, err
	}

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{chunkID: hit.ChunkID, score: hit.Similarity}
	}
	return results, nil
}

// lexicalSearch runs a BM25 match query over the sanitized query text.
func (s *SearchService) lexicalSearch(ctx context.Context, query string, k int) ([]scoredChunk, error) {
	sanitized := sanitizeQuery(query)
	if sanitized == "" {
		return nil, nil
	}
	logger.Debug("Lexical query: %q", sanitized)

	hits, err := s.store.LexicalSearch(ctx, sanitized, k)
	if err != nil {
		return nil, err
	}

	results := make([]scoredChunk, len(hits))
	for i, hit := range hits {
		results[i] = scoredChunk{chunkID: hit.ChunkID, score: hit.Score}
	}
	return results, nil
}

// mergeWithRRF fuses ranked lists with Reciprocal Rank Fusion: each
// list contributes 1/(k + rank + 1) per chunk, scores adding when a
// chunk appears in both. Equal fused scores are broken by ascending
// chunk ID so the ordering is deterministic.
func mergeWithRRF(list1, list2 []scoredChunk, k int) []scoredChunk {
	scores := make(map[string]float64)

	for rank, chunk := range list1 {
		scores[chunk.chunkID] += 1.0 / float64(k+rank+1)
	}
	for rank, chunk := range list2 {
		scores[chunk.chunkID] += 1.0 / float64(k+rank+1)
	}

	merged := make([]scoredChunk, 0, len(scores))
	for id, score := range scores {
		merged = append(merged, scoredChunk{chunkID: id, score: score})
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].score != merged[j].score {
			return merged[i].score > merged[j].score
		}
		return merged[i].chunkID < merged[j].chunkID
	})

	return merged
}

// hydrate batch-fetches full records for the fused candidates. Stale
// ids absent from the store are dropped silently.
func (s *SearchService) hydrate(ctx context.Context, fused []scoredChunk) ([]domain.HybridSearchResult, error) {
	if len(fused) == 0 {
		return []domain.HybridSearchResult{}, nil
	}

	ids := make([]string, len(fused))
	rrfScores := make(map[string]float64, len(fused))
	for i, c := range fused {
		ids[i] = c.chunkID
		rrfScores[c.chunkID] = c.score
	}

	records, err := s.store.GetChunks(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(records) < len(ids) {
		logger.Debug("Dropped %d stale chunk ids", len(ids)-len(records))
	}

	byID := make(map[string]domain.ChunkRecord, len(records))
	for _, r := range records {
		byID[r.ID] = r
	}

	// Preserve fused order through the hydration step.
	results := make([]domain.HybridSearchResult, 0, len(records))
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			continue
		}
		results = append(results, domain.HybridSearchResult{
			ChunkID:        r.ID,
			ArticleID:      r.ArticleID,
			ArticleTitle:   r.ArticleTitle,
			SectionNumber:  r.SectionNumber,
			SectionHeading: r.SectionHeading,
			RRFScore:       rrfScores[id],
			ChunkText:      r.Text,
		})
	}
	return results, nil
}

// rerank reorders results with the cross-encoder, keeping topK. With
// no reranker configured the fused order stands, truncated to topK.
func (s *SearchService) rerank(
	ctx context.Context, query string, results []domain.HybridSearchResult, topK int,
) ([]domain.HybridSearchResult, error) {
	if len(results) == 0 {
		return results, nil
	}

	if s.reranker == nil {
		logger.Debug("No reranker configured, keeping fused order")
		if len(results) > topK {
			results = results[:topK]
		}
		return results, nil
	}

	documents := make([]string, len(results))
	for i, r := range results {
		documents[i] = r.ChunkText
	}

	ranked, err := s.reranker.Rerank(ctx, query, documents, topK)
	if err != nil {
		return nil, err
	}

	reranked := make([]domain.HybridSearchResult, 0, len(ranked))
	for _, entry := range ranked {
		if entry.Index < 0 || entry.Index >= len(results) {
			logger.Warn("Reranker returned out-of-range index %d", entry.Index)
			continue
		}
		r := results[entry.Index]
		r.RerankScore = entry.Score
		reranked = append(reranked, r)
	}
	return reranked, nil
}

// attachGenerationText fills each result's generation text from the
// blob store. Missing blobs leave the field empty rather than failing
// the query.
func (s *SearchService) attachGenerationText(ctx context.Context, results []domain.HybridSearchResult) {
	if s.blobs == nil {
		return
	}
	for i := range results {
		data, err := s.blobs.Get(ctx, domain.GenerationBlobKey(results[i].ChunkID))
		if err != nil {
			logger.Warn("Generation text unavailable for %s: %v", results[i].ChunkID, err)
			continue
		}
		results[i].GenerationText = string(data)
	}
}

// expandNeighbors attaches adjacent chunks' text to each result.
func (s *SearchService) expandNeighbors(ctx context.Context, results []domain.HybridSearchResult) {
	for i := range results {
		neighbors, err := s.Neighbors(ctx, results[i].ChunkID)
		if err != nil {
			logger.Warn("Neighbor expansion failed for %s: %v", results[i].ChunkID, err)
			continue
		}
		texts := make([]string, len(neighbors))
		for j, n := range neighbors {
			texts[j] = n.Text
		}
		results[i].NeighborTexts = texts
	}
}
