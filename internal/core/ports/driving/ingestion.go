package driving

import (
	"context"

	"github.com/calliope-labs/calliope/internal/core/domain"
)

// IngestionService ingests articles into the store and indexes.
type IngestionService interface {
	// Ingest fetches, normalises, chunks, embeds and stores one
	// article, replacing any previous ingestion of it wholesale.
	Ingest(ctx context.Context, articleID string) error

	// Enqueue schedules an article for background ingestion.
	Enqueue(ctx context.Context, articleID string) error

	// ProcessNext claims and ingests one queued article. Returns
	// domain.ErrQueueEmpty when nothing is pending.
	ProcessNext(ctx context.Context) error

	// Run processes queued articles until the queue drains or the
	// context is cancelled.
	Run(ctx context.Context) error

	// Queue lists ingestion queue entries, optionally filtered by status.
	Queue(ctx context.Context, status domain.IngestionStatus, limit int) ([]domain.IngestionQueueEntry, error)
}
