package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidChunkID indicates a chunk id that does not follow the
	// {article}/{section}/chunk-{index} form.
	ErrInvalidChunkID = errors.New("invalid chunk id")

	// ErrContextLimit indicates an embedding request exceeded the model's
	// context window. Recoverable by retrying with a smaller batch.
	ErrContextLimit = errors.New("embedding context limit exceeded")

	// ErrQueueEmpty indicates no pending or failed queue entries are
	// eligible for processing.
	ErrQueueEmpty = errors.New("ingestion queue empty")

	// ErrAlreadyClaimed indicates another worker claimed the queue entry
	// between selection and the conditional status update.
	ErrAlreadyClaimed = errors.New("queue entry already claimed")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	// Vector search and ingestion vectorization are disabled without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrRerankerUnavailable indicates the reranker service is not configured.
	ErrRerankerUnavailable = errors.New("reranker service unavailable")
)
