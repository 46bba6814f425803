package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/calliope-labs/calliope/internal/core/domain"
	"github.com/calliope-labs/calliope/internal/core/ports/driven"
	"github.com/calliope-labs/calliope/internal/core/ports/driving"
	"github.com/calliope-labs/calliope/internal/logger"
	"github.com/calliope-labs/calliope/internal/normalisers"
	"github.com/calliope-labs/calliope/internal/normalisers/figure"
	"github.com/calliope-labs/calliope/internal/normalisers/segment"
	"github.com/calliope-labs/calliope/internal/postprocessors/chunker"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService fetches, normalises, chunks, embeds and stores
// articles. Each instance carries a worker identity used to claim
// queue entries, so multiple workers can drain the queue safely.
type IngestionService struct {
	source    driven.ArticleSource
	store     driven.ChunkStore
	vectors   driven.VectorIndex
	blobs     driven.BlobStore
	tokenizer driven.Tokenizer
	builder   *UnitBuilder
	uploader  *Uploader
	maxTokens int
	workerID  string
}

// NewIngestionService creates a new ingestion service. The blobs
// parameter is optional (can be nil); without it, generation text is
// not persisted. A non-positive maxTokens selects the default budget.
func NewIngestionService(
	source driven.ArticleSource,
	store driven.ChunkStore,
	vectors driven.VectorIndex,
	blobs driven.BlobStore,
	tokenizer driven.Tokenizer,
	builder *UnitBuilder,
	uploader *Uploader,
	maxTokens int,
) *IngestionService {
	if maxTokens <= 0 {
		maxTokens = chunker.DefaultMaxTokens
	}
	return &IngestionService{
		source:    source,
		store:     store,
		vectors:   vectors,
		blobs:     blobs,
		tokenizer: tokenizer,
		builder:   builder,
		uploader:  uploader,
		maxTokens: maxTokens,
		workerID:  uuid.New().String(),
	}
}

// Ingest runs the full pipeline for one article, replacing any
// previous ingestion of it wholesale.
func (s *IngestionService) Ingest(ctx context.Context, articleID string) error {
	logger.Section("Ingest " + articleID)

	article, err := s.source.FetchArticle(ctx, articleID)
	if err != nil {
		return fmt.Errorf("fetch article %q: %w", articleID, err)
	}
	article.Title = normalisers.StripDiacritics(article.OriginalTitle)

	s.foldFigures(ctx, &article)

	chunks, generation, err := s.processSections(ctx, article)
	if err != nil {
		return err
	}
	logger.Info("Article %q: %d chunks from %d sections", articleID, len(chunks), len(article.Sections)+1)

	if err := s.store.SaveArticle(ctx, article, chunks); err != nil {
		return fmt.Errorf("save article %q: %w", articleID, err)
	}

	if err := s.vectors.DeleteByArticle(ctx, articleID); err != nil {
		return fmt.Errorf("clear vectors for %q: %w", articleID, err)
	}
	if err := s.uploader.Upload(ctx, chunks); err != nil {
		return fmt.Errorf("upload vectors for %q: %w", articleID, err)
	}

	if err := s.storeGenerationText(ctx, articleID, chunks, generation); err != nil {
		return err
	}

	return nil
}

// foldFigures canonicalises figure markup across the whole article.
// The companion description page is fetched only when figures exist;
// a failed fetch degrades to short captions rather than failing the
// article.
func (s *IngestionService) foldFigures(ctx context.Context, article *domain.Article) {
	var ids []string
	ids = append(ids, figure.IDs(article.Preamble)...)
	for _, sec := range article.Sections {
		ids = append(ids, figure.IDs(sec.Content)...)
	}
	if len(ids) == 0 {
		return
	}

	extended := map[string]string{}
	page, err := s.source.FetchPage(ctx, article.ID)
	if err != nil {
		logger.Warn("Description page for %q unavailable: %v", article.ID, err)
	} else {
		extended = figure.Descriptions(page, ids)
	}
	logger.Debug("Figures: %d ids, %d extended descriptions", len(ids), len(extended))

	article.Preamble = figure.Fold(article.Preamble, extended)
	for i := range article.Sections {
		article.Sections[i].Content = figure.Fold(article.Sections[i].Content, extended)
	}
}

// processSections runs segmentation, unit building and chunking for
// the preamble and every section, sequentially so external-call
// fan-out stays bounded to one section at a time. It returns the
// persisted chunks and the parallel generation texts.
func (s *IngestionService) processSections(
	ctx context.Context, article domain.Article,
) ([]domain.Chunk, []string, error) {
	sections := make([]domain.ArticleSection, 0, len(article.Sections)+1)
	sections = append(sections, domain.ArticleSection{
		Number:  domain.PreambleSectionNumber,
		Content: article.Preamble,
	})
	sections = append(sections, article.Sections...)

	var chunks []domain.Chunk
	var generation []string

	for _, sec := range sections {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		items := segment.Items(sec.Content)
		if len(items) == 0 {
			continue
		}
		units := s.builder.Build(ctx, items, article.Title, sec.Heading)

		// The preamble is never split across chunks.
		budget := s.maxTokens
		if sec.Number == domain.PreambleSectionNumber {
			budget = 0
		}
		processed := chunker.New(s.tokenizer, chunker.WithMaxTokens(budget)).Process(units)

		for i, p := range processed {
			chunks = append(chunks, domain.Chunk{
				ID:        domain.ChunkID(article.ID, sec.Number, i),
				SectionID: domain.SectionID(article.ID, sec.Number),
				Index:     i,
				Text:      p.RetrievalText,
				NumTokens: p.TokenCount,
			})
			generation = append(generation, p.GenerationText)
		}
	}

	return chunks, generation, nil
}

// storeGenerationText replaces the article's generation blobs.
func (s *IngestionService) storeGenerationText(
	ctx context.Context, articleID string, chunks []domain.Chunk, generation []string,
) error {
	if s.blobs == nil {
		return nil
	}

	if err := s.blobs.DeletePrefix(ctx, "chunks/"+articleID+"/"); err != nil {
		return fmt.Errorf("clear generation blobs for %q: %w", articleID, err)
	}
	for i, chunk := range chunks {
		if err := s.blobs.Put(ctx, domain.GenerationBlobKey(chunk.ID), []byte(generation[i])); err != nil {
			return fmt.Errorf("store generation text for %s: %w", chunk.ID, err)
		}
	}
	return nil
}

// Enqueue schedules an article for background ingestion.
func (s *IngestionService) Enqueue(ctx context.Context, articleID string) error {
	if articleID == "" {
		return fmt.Errorf("%w: empty article id", domain.ErrInvalidInput)
	}
	if err := s.store.Enqueue(ctx, articleID); err != nil {
		return fmt.Errorf("enqueue %q: %w", articleID, err)
	}
	logger.Info("Enqueued %q", articleID)
	return nil
}

// ProcessNext claims and ingests one queued article. Failures are
// recorded on the queue entry, never returned to the caller; only an
// empty queue or a storage error surfaces.
func (s *IngestionService) ProcessNext(ctx context.Context) error {
	entry, err := s.store.ClaimNext(ctx, s.workerID)
	if err != nil {
		return err
	}
	logger.Info("Claimed %q (retry %d)", entry.ArticleID, entry.RetryCount)

	if err := s.Ingest(ctx, entry.ArticleID); err != nil {
		logger.Warn("Ingestion of %q failed: %v", entry.ArticleID, err)
		if markErr := s.store.MarkFailed(ctx, entry.ArticleID, s.workerID, err.Error()); markErr != nil {
			return fmt.Errorf("mark %q failed: %w", entry.ArticleID, markErr)
		}
		return nil
	}

	if err := s.store.MarkCompleted(ctx, entry.ArticleID, s.workerID); err != nil {
		return fmt.Errorf("mark %q completed: %w", entry.ArticleID, err)
	}
	return nil
}

// Run processes queued articles until the queue drains or the context
// is cancelled.
func (s *IngestionService) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := s.ProcessNext(ctx)
		if errors.Is(err, domain.ErrQueueEmpty) {
			logger.Info("Queue drained")
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Queue lists ingestion queue entries, optionally filtered by status.
func (s *IngestionService) Queue(
	ctx context.Context, status domain.IngestionStatus, limit int,
) ([]domain.IngestionQueueEntry, error) {
	return s.store.QueueEntries(ctx, status, limit)
}
