// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - SourceStore: Catalogue of indexed documents, reports and files
//   - SessionStore: Chat sessions and their message logs
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Applied versions are recorded in schema_migrations.
// Timestamps are stored as Unix nanoseconds so ordering is exact.
//
// # Data Location
//
// By default, the database is stored at ~/.pipewrench/data/pipewrench.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode, with a busy timeout for concurrent writers.
package sqlite
