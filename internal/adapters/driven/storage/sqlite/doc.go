// Package sqlite persists ingestion run history in SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. The schema is managed through versioned migrations
// embedded from the migrations/ directory; each migration is a pair of
// .up.sql and .down.sql files and applied versions are recorded in
// schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.docsearch/data/runs.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite in WAL mode.
package sqlite
