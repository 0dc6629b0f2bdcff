// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - Sink: idempotent canonical row persistence
//   - CursorStore: per-source sync cursor persistence
//   - RunStore: per-source run history
//
// # Schema
//
// Bookkeeping tables are managed through versioned migrations stored in the
// migrations/ directory. Collection tables are created on demand from their
// collection specs the first time a batch for that collection arrives.
//
// # Data Location
//
// By default, the database is stored at ~/.revpipe/data/revpipe.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
