package driven

import "context"

// Embedder turns text into fixed-dimension L2-normalised vectors.
// Construction is cheap; the model is loaded by EnsureReady (two-phase
// construction, so a missing model degrades retrieval instead of failing
// process start).
//
// Implementations may include:
//   - a local deterministic hashing embedder (offline, tests)
//   - Gemini embedContent over HTTP
type Embedder interface {
	// EnsureReady loads the underlying model if it is not loaded yet.
	// Idempotent; called by index initialisation and lazily before the
	// first Embed. Returns domain.ErrEmbedderUnavailable when the model
	// cannot be loaded.
	EnsureReady(ctx context.Context) error

	// Embed generates one normalised vector per input text. The result
	// has shape (len(texts), Dimensions()). Deterministic for identical
	// input.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 384).
	// Fixed per model and must match the index configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string
}
