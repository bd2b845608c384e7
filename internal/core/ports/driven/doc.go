// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - EmbeddingService: Turns query text into a vector via an external service
//   - VectorSearcher: Metric-scoped nearest-neighbour search over stored embeddings
//   - DocumentStore: Document/chunk/embedding persistence (used by ingestion
//     tooling and tests; the retrieval engine itself only reads)
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
