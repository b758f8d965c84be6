// Package sqlite implements the store ports on an embedded SQLite
// database (modernc.org/sqlite, no cgo).
//
// One Store owns the *sql.DB and hands out stateless per-entity
// façades. Queries with optional filters are assembled by the
// predicate builder, which numbers placeholders sequentially and keeps
// every bound value in a parameter slot. Flat join results are
// regrouped into nested entities by the row materializer.
//
// Chunk similarity ranking runs inside SQLite through a registered
// scalar function over embedding BLOBs, so filtering, scoring, ordering
// and limiting happen in a single statement.
package sqlite
