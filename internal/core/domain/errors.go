package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownModality indicates the requested modality is absent from
	// the registry. User input error; never retried.
	ErrUnknownModality = errors.New("unknown modality")

	// ErrInvalidTopK indicates top_k was non-positive or above MaxTopK.
	ErrInvalidTopK = errors.New("invalid top_k")

	// ErrEmbeddingService indicates the embedding call failed: network
	// error, non-success response, timeout or dimension mismatch.
	// Surfaced to the caller, not silently retried.
	ErrEmbeddingService = errors.New("embedding service error")

	// ErrDimensionMismatch indicates a vector did not match the
	// system-fixed dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStore indicates a document store failure: connection loss,
	// constraint violation or query timeout.
	ErrStore = errors.New("document store error")
)
