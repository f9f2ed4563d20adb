// Package sqlite provides a SQLite-based implementation of driven.CardStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. A card is one row holding the flattened raster, the vector
// interchange payload and the metadata as JSON text.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.cardstudio/data/cards.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite in WAL mode
// with a busy timeout.
package sqlite
