package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/calliope-labs/calliope/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/calliope-labs/calliope/internal/core/domain"
	"github.com/calliope-labs/calliope/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ChunkStore = (*Store)(nil)

// Store is the SQLite-backed chunk store. The chunks_fts virtual
// table mirrors chunk text for BM25 lexical search; triggers keep it
// in sync with the chunks table.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.calliope/data/calliope.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".calliope", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "calliope.db")

	// WAL mode for better concurrency between worker and search
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Articles ====================

// SaveArticle stores an article with its sections and chunks in one
// transaction, first removing any rows from a previous ingestion.
// Foreign-key cascades and the FTS triggers clean up derived rows.
func (s *Store) SaveArticle(ctx context.Context, article domain.Article, chunks []domain.Chunk) error {
	authorsJSON, err := json.Marshal(article.Authors)
	if err != nil {
		return fmt.Errorf("marshalling authors: %w", err)
	}
	relatedJSON, err := json.Marshal(article.Related)
	if err != nil {
		return fmt.Errorf("marshalling related ids: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", article.ID); err != nil {
		return fmt.Errorf("deleting previous ingestion: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO articles (id, title, original_title, authors, related, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, article.ID, article.Title, article.OriginalTitle,
		string(authorsJSON), string(relatedJSON),
		nullTime(article.CreatedAt), nullTime(article.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting article: %w", err)
	}

	sections := make([]domain.ArticleSection, 0, len(article.Sections)+1)
	sections = append(sections, domain.ArticleSection{Number: domain.PreambleSectionNumber})
	sections = append(sections, article.Sections...)

	sectionStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO sections (id, article_id, number, heading, position)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing section insert: %w", err)
	}
	defer sectionStmt.Close()

	for i, sec := range sections {
		id := domain.SectionID(article.ID, sec.Number)
		if _, err := sectionStmt.ExecContext(ctx, id, article.ID, sec.Number, sec.Heading, i); err != nil {
			return fmt.Errorf("inserting section %s: %w", id, err)
		}
	}

	chunkStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, section_id, chunk_index, chunk_text, num_tokens)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing chunk insert: %w", err)
	}
	defer chunkStmt.Close()

	for _, c := range chunks {
		if _, err := chunkStmt.ExecContext(ctx, c.ID, c.SectionID, c.Index, c.Text, c.NumTokens); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing article: %w", err)
	}
	return nil
}

// GetArticle retrieves an article by ID, without section content.
func (s *Store) GetArticle(ctx context.Context, articleID string) (domain.Article, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, original_title, authors, related, created_at, updated_at
		FROM articles WHERE id = ?
	`, articleID)

	var article domain.Article
	var authorsJSON, relatedJSON string
	var createdAt, updatedAt sql.NullTime
	err := row.Scan(&article.ID, &article.Title, &article.OriginalTitle,
		&authorsJSON, &relatedJSON, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Article{}, domain.ErrNotFound
		}
		return domain.Article{}, fmt.Errorf("scanning article: %w", err)
	}

	if err := json.Unmarshal([]byte(authorsJSON), &article.Authors); err != nil {
		return domain.Article{}, fmt.Errorf("unmarshalling authors: %w", err)
	}
	if err := json.Unmarshal([]byte(relatedJSON), &article.Related); err != nil {
		return domain.Article{}, fmt.Errorf("unmarshalling related ids: %w", err)
	}
	if createdAt.Valid {
		article.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		article.UpdatedAt = updatedAt.Time
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT number, heading FROM sections
		WHERE article_id = ? AND number != ?
		ORDER BY position
	`, articleID, domain.PreambleSectionNumber)
	if err != nil {
		return domain.Article{}, fmt.Errorf("querying sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sec domain.ArticleSection
		if err := rows.Scan(&sec.Number, &sec.Heading); err != nil {
			return domain.Article{}, fmt.Errorf("scanning section: %w", err)
		}
		article.Sections = append(article.Sections, sec)
	}
	if err := rows.Err(); err != nil {
		return domain.Article{}, fmt.Errorf("iterating sections: %w", err)
	}

	return article, nil
}

// DeleteArticle removes an article and all derived rows.
func (s *Store) DeleteArticle(ctx context.Context, articleID string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", articleID)
	if err != nil {
		return fmt.Errorf("deleting article: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Chunks ====================

// chunkRecordColumns is the select list shared by the joined chunk
// queries, scanned by scanChunkRecord.
const chunkRecordColumns = `
	c.id, c.section_id, c.chunk_index, c.chunk_text, c.num_tokens,
	sec.number, sec.heading, a.id, a.title
`

func scanChunkRecord(rows *sql.Rows) (domain.ChunkRecord, error) {
	var r domain.ChunkRecord
	err := rows.Scan(&r.ID, &r.SectionID, &r.Index, &r.Text, &r.NumTokens,
		&r.SectionNumber, &r.SectionHeading, &r.ArticleID, &r.ArticleTitle)
	if err != nil {
		return domain.ChunkRecord{}, fmt.Errorf("scanning chunk record: %w", err)
	}
	return r, nil
}

// GetChunks fetches chunk records for the given IDs in one query.
// Missing IDs are silently omitted.
func (s *Store) GetChunks(ctx context.Context, chunkIDs []string) ([]domain.ChunkRecord, error) {
	if len(chunkIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?, ", len(chunkIDs)-1) + "?"
	args := make([]any, len(chunkIDs))
	for i, id := range chunkIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+chunkRecordColumns+`
		FROM chunks c
		JOIN sections sec ON sec.id = c.section_id
		JOIN articles a ON a.id = sec.article_id
		WHERE c.id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var records []domain.ChunkRecord
	for rows.Next() {
		r, err := scanChunkRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return records, nil
}

// ChunksBySection returns a section's chunks ordered by index.
func (s *Store) ChunksBySection(ctx context.Context, sectionID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, section_id, chunk_index, chunk_text, num_tokens
		FROM chunks WHERE section_id = ?
		ORDER BY chunk_index
	`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("querying section chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk
	for rows.Next() {
		var c domain.Chunk
		if err := rows.Scan(&c.ID, &c.SectionID, &c.Index, &c.Text, &c.NumTokens); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		chunks = append(chunks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating section chunks: %w", err)
	}
	return chunks, nil
}

// SectionChunkCount returns how many chunks a section holds.
func (s *Store) SectionChunkCount(ctx context.Context, sectionID string) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks WHERE section_id = ?", sectionID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting section chunks: %w", err)
	}
	return count, nil
}

// LexicalSearch runs a BM25 match query over chunk text. SQLite's
// bm25() returns lower-is-better values, so scores are negated to the
// conventional higher-is-better form.
func (s *Store) LexicalSearch(ctx context.Context, query string, limit int) ([]driven.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, bm25(chunks_fts)
		FROM chunks_fts
		JOIN chunks c ON c.rowid = chunks_fts.rowid
		WHERE chunks_fts MATCH ?
		ORDER BY bm25(chunks_fts)
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("lexical search: %w", err)
	}
	defer rows.Close()

	var hits []driven.SearchHit
	for rows.Next() {
		var hit driven.SearchHit
		var rank float64
		if err := rows.Scan(&hit.ChunkID, &rank); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		hit.Score = -rank
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search hits: %w", err)
	}
	return hits, nil
}

// ==================== Ingestion Queue ====================

// Enqueue adds an article to the queue, or resets an existing entry
// to pending unless a worker currently holds it.
func (s *Store) Enqueue(ctx context.Context, articleID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingestion_queue (article_id, status)
		VALUES (?, ?)
		ON CONFLICT(article_id) DO UPDATE SET
			status = excluded.status,
			error_message = NULL
		WHERE ingestion_queue.status != ?
	`, articleID, domain.StatusPending, domain.StatusProcessing)
	if err != nil {
		return fmt.Errorf("enqueueing article: %w", err)
	}
	return nil
}

// ClaimNext atomically transitions the oldest eligible entry to
// processing under the worker's identity. Pending and failed entries
// are both eligible, never-attempted entries first, then oldest
// attempt first. The single conditional UPDATE is what makes
// concurrent workers safe.
func (s *Store) ClaimNext(ctx context.Context, workerID string) (domain.IngestionQueueEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE ingestion_queue
		SET status = ?, worker_id = ?, last_attempt = CURRENT_TIMESTAMP
		WHERE article_id = (
			SELECT article_id FROM ingestion_queue
			WHERE status IN (?, ?)
			ORDER BY last_attempt IS NOT NULL, last_attempt
			LIMIT 1
		)
		RETURNING article_id, status, retry_count, worker_id, last_attempt, error_message
	`, domain.StatusProcessing, workerID, domain.StatusPending, domain.StatusFailed)

	entry, err := scanQueueRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.IngestionQueueEntry{}, domain.ErrQueueEmpty
		}
		return domain.IngestionQueueEntry{}, fmt.Errorf("claiming queue entry: %w", err)
	}
	return entry, nil
}

// MarkCompleted records a successful ingestion. The worker guard
// refuses the update when another worker has since reclaimed the
// entry.
func (s *Store) MarkCompleted(ctx context.Context, articleID, workerID string) error {
	return s.finishEntry(ctx, articleID, workerID, domain.StatusCompleted, "")
}

// MarkFailed records a failed ingestion and bumps the retry count.
func (s *Store) MarkFailed(ctx context.Context, articleID, workerID, reason string) error {
	return s.finishEntry(ctx, articleID, workerID, domain.StatusFailed, reason)
}

func (s *Store) finishEntry(
	ctx context.Context, articleID, workerID string, status domain.IngestionStatus, reason string,
) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE ingestion_queue
		SET status = ?,
			error_message = ?,
			retry_count = retry_count + (CASE WHEN ? = 'failed' THEN 1 ELSE 0 END)
		WHERE article_id = ? AND worker_id = ? AND status = ?
	`, status, nullString(reason), status, articleID, workerID, domain.StatusProcessing)
	if err != nil {
		return fmt.Errorf("updating queue entry: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking queue update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyClaimed, articleID)
	}
	return nil
}

// QueueEntries lists queue entries, newest first.
func (s *Store) QueueEntries(
	ctx context.Context, status domain.IngestionStatus, limit int,
) ([]domain.IngestionQueueEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT article_id, status, retry_count, worker_id, last_attempt, error_message
		FROM ingestion_queue
	`
	args := []any{}
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying queue: %w", err)
	}
	defer rows.Close()

	var entries []domain.IngestionQueueEntry
	for rows.Next() {
		entry, err := scanQueueRows(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating queue entries: %w", err)
	}
	return entries, nil
}

// queueRow abstracts sql.Row and sql.Rows for shared scanning.
type queueRow interface {
	Scan(dest ...any) error
}

func scanQueueRow(row queueRow) (domain.IngestionQueueEntry, error) {
	var entry domain.IngestionQueueEntry
	var workerID, errorMessage sql.NullString
	var lastAttempt sql.NullTime
	err := row.Scan(&entry.ArticleID, &entry.Status, &entry.RetryCount,
		&workerID, &lastAttempt, &errorMessage)
	if err != nil {
		return domain.IngestionQueueEntry{}, err
	}
	entry.WorkerID = workerID.String
	entry.ErrorMessage = errorMessage.String
	if lastAttempt.Valid {
		t := lastAttempt.Time
		entry.LastAttempt = &t
	}
	return entry, nil
}

func scanQueueRows(rows *sql.Rows) (domain.IngestionQueueEntry, error) {
	entry, err := scanQueueRow(rows)
	if err != nil {
		return domain.IngestionQueueEntry{}, fmt.Errorf("scanning queue entry: %w", err)
	}
	return entry, nil
}

// nullString converts an empty string to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullTime converts a zero time to NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
