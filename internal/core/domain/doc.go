// Package domain defines the core business entities for kbdb.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: Full text deposited by the ingestion process
//   - Chunk: A retrievable sub-span of a document
//   - Embedding: A model/task-tagged vector projection of a chunk
//   - Modality: A named search strategy (model, text transform, metric)
//   - Registry: The immutable modality table consulted per search
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
