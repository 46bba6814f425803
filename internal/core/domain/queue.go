package domain

import "time"

// IngestionStatus is the state of an ingestion queue entry.
type IngestionStatus string

// Queue entry states. The machine is pending -> processing ->
// {completed | failed}; failed and pending entries are both eligible
// for re-selection, oldest attempt first, never-attempted first.
const (
	StatusPending    IngestionStatus = "pending"
	StatusProcessing IngestionStatus = "processing"
	StatusCompleted  IngestionStatus = "completed"
	StatusFailed     IngestionStatus = "failed"
)

// IngestionQueueEntry tracks the ingestion lifecycle of one article.
// ArticleID is unique within the queue.
type IngestionQueueEntry struct {
	ArticleID    string
	Status       IngestionStatus
	RetryCount   int
	LastAttempt  *time.Time
	ErrorMessage string

	// WorkerID identifies the worker holding the processing claim.
	WorkerID string
}
