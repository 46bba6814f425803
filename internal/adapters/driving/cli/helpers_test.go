package cli

import (
	"context"
	"errors"

	"github.com/calliope-labs/calliope/internal/core/domain"
)

// setupTestServices installs mock services and returns a cleanup
// function restoring the previous wiring.
func setupTestServices() func() {
	oldIngestion := ingestionService
	oldSearch := searchService

	ingestionService = &mockIngestionService{}
	searchService = &mockSearchService{}

	return func() {
		ingestionService = oldIngestion
		searchService = oldSearch
	}
}

type mockIngestionService struct {
	ingested  []string
	enqueued  []string
	processed int
	entries   []domain.IngestionQueueEntry
	err       error
}

func (m *mockIngestionService) Ingest(_ context.Context, articleID string) error {
	if m.err != nil {
		return m.err
	}
	m.ingested = append(m.ingested, articleID)
	return nil
}

func (m *mockIngestionService) Enqueue(_ context.Context, articleID string) error {
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, articleID)
	return nil
}

func (m *mockIngestionService) ProcessNext(context.Context) error {
	if m.err != nil {
		return m.err
	}
	if m.processed == 0 {
		return domain.ErrQueueEmpty
	}
	m.processed--
	return nil
}

func (m *mockIngestionService) Run(ctx context.Context) error {
	for {
		err := m.ProcessNext(ctx)
		if errors.Is(err, domain.ErrQueueEmpty) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (m *mockIngestionService) Queue(
	_ context.Context, status domain.IngestionStatus, _ int,
) ([]domain.IngestionQueueEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	if status == "" {
		return m.entries, nil
	}
	var filtered []domain.IngestionQueueEntry
	for _, e := range m.entries {
		if e.Status == status {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

type mockSearchService struct {
	results   []domain.HybridSearchResult
	neighbors []domain.Chunk
	lastOpts  domain.SearchOptions
	err       error
}

func (m *mockSearchService) Search(
	_ context.Context, _ string, opts domain.SearchOptions,
) ([]domain.HybridSearchResult, error) {
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	if m.results == nil {
		return []domain.HybridSearchResult{
			{
				ChunkID:        "group-theory/1/chunk-0",
				ArticleID:      "group-theory",
				ArticleTitle:   "Group Theory",
				SectionNumber:  "1",
				SectionHeading: "Definitions",
				RRFScore:       0.0325,
				ChunkText:      "A group is a set with an operation.",
			},
		}, nil
	}
	return m.results, nil
}

func (m *mockSearchService) Neighbors(_ context.Context, _ string) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.neighbors, nil
}
