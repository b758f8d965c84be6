// Package memory provides in-memory implementations of the storage
// ports. They mirror the SQLite adapter's filter and update semantics
// and back the service tests; nothing persists across restarts.
package memory
