package driven

import (
	"context"

	"github.com/calliope-labs/calliope/internal/core/domain"
)

// ChunkStore persists articles, sections, chunks and the ingestion
// queue, and serves BM25 lexical search over chunk text.
type ChunkStore interface {
	// SaveArticle stores an article together with its sections and
	// chunks in one transaction. Any rows from a previous ingestion of
	// the same article are removed first.
	SaveArticle(ctx context.Context, article domain.Article, chunks []domain.Chunk) error

	// GetArticle retrieves an article by ID.
	// Returns domain.ErrNotFound if the article doesn't exist.
	GetArticle(ctx context.Context, articleID string) (domain.Article, error)

	// DeleteArticle removes an article and all derived rows.
	DeleteArticle(ctx context.Context, articleID string) error

	// GetChunks fetches chunk records for the given IDs. Missing IDs
	// are silently omitted so callers can drop stale hits.
	GetChunks(ctx context.Context, chunkIDs []string) ([]domain.ChunkRecord, error)

	// ChunksBySection returns a section's chunks ordered by index.
	ChunksBySection(ctx context.Context, sectionID string) ([]domain.Chunk, error)

	// SectionChunkCount returns how many chunks a section holds.
	SectionChunkCount(ctx context.Context, sectionID string) (int, error)

	// LexicalSearch performs a BM25 keyword search over chunk text and
	// returns matching chunk IDs with scores, best first.
	LexicalSearch(ctx context.Context, query string, limit int) ([]SearchHit, error)

	// Enqueue adds an article ID to the ingestion queue with pending
	// status. Re-enqueueing an existing entry resets it to pending.
	Enqueue(ctx context.Context, articleID string) error

	// ClaimNext atomically claims the oldest pending entry for the
	// given worker. Returns domain.ErrQueueEmpty when nothing is
	// pending.
	ClaimNext(ctx context.Context, workerID string) (domain.IngestionQueueEntry, error)

	// MarkCompleted records a successful ingestion for a claimed entry.
	MarkCompleted(ctx context.Context, articleID, workerID string) error

	// MarkFailed records a failed ingestion with the error message.
	MarkFailed(ctx context.Context, articleID, workerID, reason string) error

	// QueueEntries lists queue entries, newest first, optionally
	// filtered by status (empty string means all).
	QueueEntries(ctx context.Context, status domain.IngestionStatus, limit int) ([]domain.IngestionQueueEntry, error)

	// Close releases resources.
	Close() error
}

// SearchHit represents a lexical search result.
type SearchHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Score is the relevance score (e.g., BM25).
	Score float64
}
