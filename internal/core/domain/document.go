package domain

// Document represents a full text deposited by the out-of-process
// ingestion pipeline. The retrieval core reads documents but never
// creates or mutates them.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the human-readable name. Not unique, but indexed for lookup.
	Name string

	// Content is the complete document text before chunking.
	Content string
}

// Chunk represents a retrievable unit within a document.
// Documents are split into chunks so that results carry sub-document
// granularity. A chunk cannot exist without its parent document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Index is the ordinal position within the document.
	// (DocumentID, Index) is unique.
	Index int

	// Content is the text content of this chunk.
	Content string
}

// Embedding is a model/task-tagged vector projection of a chunk's content.
// It is keyed by (ChunkID, Model, Task); at most one embedding exists per
// chunk per pair. Embeddings have no independent lifecycle and are removed
// with their owning chunk.
type Embedding struct {
	// ChunkID links to the owning Chunk.
	ChunkID string

	// Model is the embedding model that produced the vector.
	Model string

	// Task is the modality task the vector was indexed for.
	Task string

	// Vector is the fixed-dimension embedding.
	Vector []float32
}
