package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmbedderUnavailable indicates the embedding model could not be
	// loaded or reached. Retrieval degrades to empty results; callers
	// must treat this as non-fatal.
	ErrEmbedderUnavailable = errors.New("embedder unavailable")

	// ErrLLMUnavailable indicates the generation service is not
	// configured. Queries still succeed with a fixed notice response.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrIndexUnavailable indicates the vector index is not configured.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch indicates an embedding did not match the
	// index dimension fixed at construction.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrCorruptState indicates a persisted file could not be decoded.
	// The index recovers by rebuilding from the docstore.
	ErrCorruptState = errors.New("corrupt persisted state")
)
