// Package docstore provides a semantic document memory store: durable
// storage of text documents with metadata, similarity-ranked retrieval,
// and age-based retention.
//
// The store delegates all persistence and similarity computation to a
// VectorIndex backend. The SDK ships a chromem-go backed index (embedded,
// persistent, pure Go); any backend satisfying the VectorIndex contract
// is substitutable (pgvector, an external vector database, ...).
//
// Architecture:
//   - DocumentStore: document lifecycle (store, get, delete) and the
//     initialize/close state machine
//   - SearchRanker: similarity search with explicit re-ranking
//   - RetentionManager: age-based cleanup of stored documents
//   - StatsCollector: bounded-cost collection statistics
//   - VectorIndex / Embedder: backend contracts
//
// Failure model: only ErrUninitialized (and ErrClosed from Initialize)
// surface as Go errors. Backend faults are folded into result values so
// batch ingestion and scheduled maintenance jobs can keep running; search
// is best-effort and degrades to an empty result set.
//
// A DocumentStore instance assumes a single logical owner. No internal
// locking is imposed; concurrent writers must serialize externally or
// rely on the backend's per-call atomicity.
package docstore
