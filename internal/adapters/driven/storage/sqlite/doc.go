// Package sqlite provides the SQLite-based implementation of the ChunkStore port.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A single database connection serves
// article/section/chunk persistence, BM25 lexical search through an FTS5 virtual
// table, and the ingestion queue.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. The chunks_fts virtual table is kept in sync with the
// chunks table by triggers, so lexical search never needs explicit index writes.
//
// # Data Location
//
// By default, the database is stored at ~/.calliope/data/calliope.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode; the queue claim is a single conditional UPDATE so
// concurrent workers never pick up the same article.
package sqlite
