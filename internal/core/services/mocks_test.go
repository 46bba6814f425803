package services

import (
	"context"
	"strings"
	"sync"

	"github.com/calliope-labs/calliope/internal/core/domain"
	"github.com/calliope-labs/calliope/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockChunkStore implements driven.ChunkStore for testing.
type mockChunkStore struct {
	mu sync.Mutex

	records       map[string]domain.ChunkRecord
	sectionCounts map[string]int
	lexHits       []driven.SearchHit
	lexErr        error
	getErr        error

	savedArticle *domain.Article
	savedChunks  []domain.Chunk
	saveErr      error

	queue    []domain.IngestionQueueEntry
	enqueued []string

	completed []string
	failed    map[string]string
}

func newMockChunkStore() *mockChunkStore {
	return &mockChunkStore{
		records:       map[string]domain.ChunkRecord{},
		sectionCounts: map[string]int{},
		failed:        map[string]string{},
	}
}

func (m *mockChunkStore) SaveArticle(_ context.Context, article domain.Article, chunks []domain.Chunk) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.savedArticle = &article
	m.savedChunks = chunks
	return nil
}

func (m *mockChunkStore) GetArticle(_ context.Context, _ string) (domain.Article, error) {
	return domain.Article{}, domain.ErrNotFound
}

func (m *mockChunkStore) DeleteArticle(_ context.Context, _ string) error {
	return nil
}

func (m *mockChunkStore) GetChunks(_ context.Context, chunkIDs []string) ([]domain.ChunkRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	var out []domain.ChunkRecord
	for _, id := range chunkIDs {
		if r, ok := m.records[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockChunkStore) ChunksBySection(_ context.Context, sectionID string) ([]domain.Chunk, error) {
	var out []domain.Chunk
	for _, r := range m.records {
		if r.SectionID == sectionID {
			out = append(out, r.Chunk)
		}
	}
	return out, nil
}

func (m *mockChunkStore) SectionChunkCount(_ context.Context, sectionID string) (int, error) {
	return m.sectionCounts[sectionID], nil
}

func (m *mockChunkStore) LexicalSearch(_ context.Context, _ string, limit int) ([]driven.SearchHit, error) {
	if m.lexErr != nil {
		return nil, m.lexErr
	}
	if limit > len(m.lexHits) {
		return m.lexHits, nil
	}
	return m.lexHits[:limit], nil
}

func (m *mockChunkStore) Enqueue(_ context.Context, articleID string) error {
	m.enqueued = append(m.enqueued, articleID)
	return nil
}

func (m *mockChunkStore) ClaimNext(_ context.Context, workerID string) (domain.IngestionQueueEntry, error) {
	if len(m.queue) == 0 {
		return domain.IngestionQueueEntry{}, domain.ErrQueueEmpty
	}
	entry := m.queue[0]
	m.queue = m.queue[1:]
	entry.Status = domain.StatusProcessing
	entry.WorkerID = workerID
	return entry, nil
}

func (m *mockChunkStore) MarkCompleted(_ context.Context, articleID, _ string) error {
	m.completed = append(m.completed, articleID)
	return nil
}

func (m *mockChunkStore) MarkFailed(_ context.Context, articleID, _, reason string) error {
	m.failed[articleID] = reason
	return nil
}

func (m *mockChunkStore) QueueEntries(_ context.Context, _ domain.IngestionStatus, _ int) ([]domain.IngestionQueueEntry, error) {
	return m.queue, nil
}

func (m *mockChunkStore) Close() error {
	return nil
}

// addRecord registers a chunk record and bumps its section count.
func (m *mockChunkStore) addRecord(sectionID string, index int, text string) {
	id := sectionID + "/chunk-" + itoa(index)
	m.records[id] = domain.ChunkRecord{
		Chunk: domain.Chunk{
			ID:        id,
			SectionID: sectionID,
			Index:     index,
			Text:      text,
		},
		ArticleID: strings.SplitN(sectionID, "/", 2)[0],
	}
	if index+1 > m.sectionCounts[sectionID] {
		m.sectionCounts[sectionID] = index + 1
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	hits      []driven.VectorHit
	searchErr error
	upsertErr error

	upsertedIDs     [][]string
	deletedArticles []string
}

func (m *mockVectorIndex) Upsert(_ context.Context, ids []string, _ [][]float32) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upsertedIDs = append(m.upsertedIDs, ids)
	return nil
}

func (m *mockVectorIndex) DeleteByArticle(_ context.Context, articleID string) error {
	m.deletedArticles = append(m.deletedArticles, articleID)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Close() error {
	return nil
}

// mockEmbeddingService implements driven.EmbeddingService for testing.
// batchErrs are returned in sequence before batches start succeeding,
// which is how the context-limit halving path is exercised.
type mockEmbeddingService struct {
	embedding []float32
	embedErr  error
	batchErrs []error

	batchSizes []int
}

func (m *mockEmbeddingService) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.embedding, nil
}

func (m *mockEmbeddingService) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchSizes = append(m.batchSizes, len(texts))
	if len(m.batchErrs) > 0 {
		err := m.batchErrs[0]
		m.batchErrs = m.batchErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.embedding
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return len(m.embedding)
}

func (m *mockEmbeddingService) ModelName() string {
	return "mock-embedding"
}

func (m *mockEmbeddingService) Close() error {
	return nil
}

// mockReranker implements driven.Reranker for testing.
type mockReranker struct {
	ranked []driven.RankedIndex
	err    error
}

func (m *mockReranker) Rerank(_ context.Context, _ string, _ []string, _ int) ([]driven.RankedIndex, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.ranked, nil
}

func (m *mockReranker) Close() error {
	return nil
}

// mockBlobStore implements driven.BlobStore for testing.
type mockBlobStore struct {
	blobs  map[string][]byte
	getErr error
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{blobs: map[string][]byte{}}
}

func (m *mockBlobStore) Put(_ context.Context, key string, data []byte) error {
	m.blobs[key] = data
	return nil
}

func (m *mockBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.blobs[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return data, nil
}

func (m *mockBlobStore) DeletePrefix(_ context.Context, prefix string) error {
	for key := range m.blobs {
		if strings.HasPrefix(key, prefix) {
			delete(m.blobs, key)
		}
	}
	return nil
}

// mockConverter implements driven.Converter for testing.
type mockConverter struct {
	mathPrefix    string
	summaryPrefix string
	err           error

	mathCalls  [][]string
	tableCalls [][]string
}

func (m *mockConverter) ConvertMath(_ context.Context, texts []string, _, _ string) ([]string, error) {
	m.mathCalls = append(m.mathCalls, texts)
	if m.err != nil {
		return nil, m.err
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = m.mathPrefix + t
	}
	return out, nil
}

func (m *mockConverter) SummarizeTables(_ context.Context, tables []string, _, _ string) ([]string, error) {
	m.tableCalls = append(m.tableCalls, tables)
	if m.err != nil {
		return nil, m.err
	}
	out := make([]string, len(tables))
	for i := range tables {
		out[i] = m.summaryPrefix + itoa(i)
	}
	return out, nil
}

func (m *mockConverter) Close() error {
	return nil
}

// mockArticleSource implements driven.ArticleSource for testing.
type mockArticleSource struct {
	article  domain.Article
	page     string
	fetchErr error
	pageErr  error
}

func (m *mockArticleSource) FetchArticle(_ context.Context, _ string) (domain.Article, error) {
	if m.fetchErr != nil {
		return domain.Article{}, m.fetchErr
	}
	return m.article, nil
}

func (m *mockArticleSource) FetchPage(_ context.Context, _ string) (string, error) {
	if m.pageErr != nil {
		return "", m.pageErr
	}
	return m.page, nil
}

// fieldTokenizer counts whitespace-separated words.
type fieldTokenizer struct{}

func (fieldTokenizer) CountTokens(text string) int {
	return len(strings.Fields(text))
}
