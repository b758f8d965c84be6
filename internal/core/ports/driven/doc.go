// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentStore: Document record persistence
//   - ProjectStore: Project record persistence
//   - ChunkStore: Chunk persistence and similarity retrieval
//   - FileStore: Raw file bytes keyed by opaque storage keys
//
// # Optional Interfaces
//
//   - EmbeddingService: Vector generation; ingestion and retrieval
//     are disabled without it
//   - Extractor: MIME-typed text extraction
package driven
