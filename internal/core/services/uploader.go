package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/calliope-labs/calliope/internal/core/domain"
	"github.com/calliope-labs/calliope/internal/core/ports/driven"
	"github.com/calliope-labs/calliope/internal/logger"
)

// Embedding batch sizing. The provider enforces a hard per-call cap;
// the initial size sits below it to leave halving headroom.
const (
	MaxEmbedBatchSize     = 100
	InitialEmbedBatchSize = 48
)

// Uploader embeds chunk retrieval texts in batches and upserts the
// resulting vectors. Batches shrink adaptively when the provider
// reports a context-limit error.
type Uploader struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorIndex
	limiter  *rate.Limiter
}

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithRateLimit caps embedding calls per second.
func WithRateLimit(callsPerSecond float64) UploaderOption {
	return func(u *Uploader) {
		if callsPerSecond > 0 {
			u.limiter = rate.NewLimiter(rate.Limit(callsPerSecond), 1)
		}
	}
}

// NewUploader creates an uploader with the given options.
func NewUploader(embedder driven.EmbeddingService, vectors driven.VectorIndex, opts ...UploaderOption) *Uploader {
	u := &Uploader{embedder: embedder, vectors: vectors}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload embeds and upserts all chunks. On a context-limit error the
// batch size is halved (minimum 1) and the same window retried; any
// other embedding error is fatal. Successful batches advance the
// cursor, so partial progress is preserved in the vector index.
func (u *Uploader) Upload(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	batchSize := InitialEmbedBatchSize
	if batchSize > MaxEmbedBatchSize {
		batchSize = MaxEmbedBatchSize
	}

	cursor := 0
	for cursor < len(chunks) {
		end := cursor + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		window := chunks[cursor:end]

		if u.limiter != nil {
			if err := u.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("rate limiter: %w", err)
			}
		}

		texts := make([]string, len(window))
		for i, c := range window {
			texts[i] = c.Text
		}

		vectors, err := u.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			if errors.Is(err, domain.ErrContextLimit) && len(window) > 1 {
				batchSize = len(window) / 2
				logger.Warn("Context limit at batch size %d, retrying window at %d", len(window), batchSize)
				continue
			}
			return fmt.Errorf("embed batch at offset %d: %w", cursor, err)
		}
		if len(vectors) != len(window) {
			return fmt.Errorf("embed batch at offset %d: got %d vectors for %d texts", cursor, len(vectors), len(window))
		}

		ids := make([]string, len(window))
		for i, c := range window {
			ids[i] = c.ID
		}
		if err := u.vectors.Upsert(ctx, ids, vectors); err != nil {
			return fmt.Errorf("upsert vectors at offset %d: %w", cursor, err)
		}

		logger.Debug("Uploaded %d vectors (%d/%d)", len(window), end, len(chunks))
		cursor = end
	}

	return nil
}
