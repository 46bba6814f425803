package sqlite

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calliope-labs/calliope/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "calliope-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

func testArticle(id string) domain.Article {
	return domain.Article{
		ID:            id,
		Title:         "Group theory",
		OriginalTitle: "Group theory",
		Authors:       []string{"E. Noether"},
		Sections: []domain.ArticleSection{
			{Number: "1", Heading: "Definition"},
			{Number: "2", Heading: "Examples"},
		},
	}
}

func testChunks(id string) []domain.Chunk {
	return []domain.Chunk{
		{
			ID:        domain.ChunkID(id, "1", 0),
			SectionID: domain.SectionID(id, "1"),
			Index:     0,
			Text:      "A group is a set with a binary operation.",
			NumTokens: 9,
		},
		{
			ID:        domain.ChunkID(id, "1", 1),
			SectionID: domain.SectionID(id, "1"),
			Index:     1,
			Text:      "The operation must be associative.",
			NumTokens: 5,
		},
		{
			ID:        domain.ChunkID(id, "2", 0),
			SectionID: domain.SectionID(id, "2"),
			Index:     0,
			Text:      "The integers under addition form a group.",
			NumTokens: 7,
		},
	}
}

func TestSaveAndGetArticle(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveArticle(ctx, testArticle("groups"), testChunks("groups")))

	article, err := store.GetArticle(ctx, "groups")
	require.NoError(t, err)
	assert.Equal(t, "Group theory", article.Title)
	assert.Equal(t, []string{"E. Noether"}, article.Authors)
	require.Len(t, article.Sections, 2)
	assert.Equal(t, "Definition", article.Sections[0].Heading)
}

func TestGetArticleNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetArticle(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSaveArticleReplacesWholesale(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveArticle(ctx, testArticle("groups"), testChunks("groups")))

	// Second ingestion with fewer chunks must leave no strays behind.
	smaller := []domain.Chunk{
		{
			ID:        domain.ChunkID("groups", "1", 0),
			SectionID: domain.SectionID("groups", "1"),
			Index:     0,
			Text:      "Rewritten definition chunk.",
			NumTokens: 3,
		},
	}
	article := testArticle("groups")
	article.Sections = article.Sections[:1]
	require.NoError(t, store.SaveArticle(ctx, article, smaller))

	count, err := store.SectionChunkCount(ctx, domain.SectionID("groups", "1"))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	records, err := store.GetChunks(ctx, []string{domain.ChunkID("groups", "2", 0)})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGetChunksJoinsMetadata(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveArticle(ctx, testArticle("groups"), testChunks("groups")))

	records, err := store.GetChunks(ctx, []string{
		domain.ChunkID("groups", "2", 0),
		"groups/9/chunk-0", // stale id, silently omitted
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "groups", records[0].ArticleID)
	assert.Equal(t, "Group theory", records[0].ArticleTitle)
	assert.Equal(t, "2", records[0].SectionNumber)
	assert.Equal(t, "Examples", records[0].SectionHeading)
}

func TestChunksBySectionOrdered(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveArticle(ctx, testArticle("groups"), testChunks("groups")))

	chunks, err := store.ChunksBySection(ctx, domain.SectionID("groups", "1"))
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[1].Index)
}

func TestLexicalSearch(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveArticle(ctx, testArticle("groups"), testChunks("groups")))

	hits, err := store.LexicalSearch(ctx, "integers addition", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, domain.ChunkID("groups", "2", 0), hits[0].ChunkID)
}

func TestLexicalSearchAfterReingestion(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveArticle(ctx, testArticle("groups"), testChunks("groups")))
	require.NoError(t, store.SaveArticle(ctx, testArticle("groups"), []domain.Chunk{
		{
			ID:        domain.ChunkID("groups", "1", 0),
			SectionID: domain.SectionID("groups", "1"),
			Index:     0,
			Text:      "Completely different content now.",
			NumTokens: 4,
		},
	}))

	// The old text must be gone from the lexical index too.
	hits, err := store.LexicalSearch(ctx, "integers", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = store.LexicalSearch(ctx, "different content", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestDeleteArticle(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SaveArticle(ctx, testArticle("groups"), testChunks("groups")))
	require.NoError(t, store.DeleteArticle(ctx, "groups"))

	_, err := store.GetArticle(ctx, "groups")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.DeleteArticle(ctx, "groups"), domain.ErrNotFound)
}

func TestQueueClaimLifecycle(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Enqueue(ctx, "first"))
	require.NoError(t, store.Enqueue(ctx, "second"))

	entry, err := store.ClaimNext(ctx, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProcessing, entry.Status)
	assert.Equal(t, "worker-1", entry.WorkerID)

	// The second claim must not hand out the same article.
	entry2, err := store.ClaimNext(ctx, "worker-2")
	require.NoError(t, err)
	assert.NotEqual(t, entry.ArticleID, entry2.ArticleID)

	_, err = store.ClaimNext(ctx, "worker-3")
	assert.ErrorIs(t, err, domain.ErrQueueEmpty)

	require.NoError(t, store.MarkCompleted(ctx, entry.ArticleID, "worker-1"))
	require.NoError(t, store.MarkFailed(ctx, entry2.ArticleID, "worker-2", "fetch timeout"))

	failed, err := store.QueueEntries(ctx, domain.StatusFailed, 10)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, entry2.ArticleID, failed[0].ArticleID)
	assert.Equal(t, "fetch timeout", failed[0].ErrorMessage)
	assert.Equal(t, 1, failed[0].RetryCount)
}

func TestFailedEntryEligibleForReclaim(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Enqueue(ctx, "flaky"))

	entry, err := store.ClaimNext(ctx, "worker-1")
	require.NoError(t, err)
	require.NoError(t, store.MarkFailed(ctx, entry.ArticleID, "worker-1", "boom"))

	reclaimed, err := store.ClaimNext(ctx, "worker-1")
	require.NoError(t, err)
	assert.Equal(t, "flaky", reclaimed.ArticleID)
	assert.Equal(t, 1, reclaimed.RetryCount)
}

func TestFinishRequiresOwnership(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Enqueue(ctx, "owned"))
	_, err := store.ClaimNext(ctx, "worker-1")
	require.NoError(t, err)

	// A different worker can neither complete nor fail the entry.
	assert.ErrorIs(t, store.MarkCompleted(ctx, "owned", "worker-2"), domain.ErrAlreadyClaimed)
	assert.ErrorIs(t, store.MarkFailed(ctx, "owned", "worker-2", "nope"), domain.ErrAlreadyClaimed)
}

func TestEnqueueDoesNotResetProcessing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.Enqueue(ctx, "busy"))
	_, err := store.ClaimNext(ctx, "worker-1")
	require.NoError(t, err)

	require.NoError(t, store.Enqueue(ctx, "busy"))

	processing, err := store.QueueEntries(ctx, domain.StatusProcessing, 10)
	require.NoError(t, err)
	assert.Len(t, processing, 1)
}
