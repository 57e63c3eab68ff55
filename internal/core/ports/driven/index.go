package driven

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// KnowledgeIndex stores chunk embeddings and answers nearest-neighbour
// queries. The docstore behind it is the source of truth; the vector
// index is a derived cache rebuilt from chunk content on initialisation.
//
// Mutating operations (Add, Upsert, Reset, Initialize) are serialised by
// the implementation; Search may run concurrently against the last fully
// built state.
type KnowledgeIndex interface {
	// Initialize loads the persisted docstore and rebuilds the vector
	// index from chunk content in insertion order. Idempotent - calling
	// it again performs another full rebuild, which self-heals drift
	// from external edits to the persisted store.
	Initialize(ctx context.Context) error

	// Add inserts chunks whose ids are not yet stored (pure insert -
	// existing ids are skipped, not updated) and persists both files.
	// Nothing is mutated when embedding fails.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Upsert inserts new ids and overwrites content for existing ids in
	// place, then performs a full rebuild and persists.
	Upsert(ctx context.Context, chunks []domain.Chunk) error

	// Reset clears the index and docstore and persists the empty state.
	Reset(ctx context.Context) error

	// Search embeds the query and returns up to topK scored chunks in
	// descending score order. A blank query, an empty index, or any
	// embedding/index failure yields an empty slice, never an error -
	// retrieval degrades gracefully.
	Search(ctx context.Context, query string, topK int) []domain.ScoredChunk

	// Exists reports whether a chunk id is stored.
	Exists(id string) bool

	// OrderedIDs returns the stored ids in insertion order.
	OrderedIDs() []string

	// Count returns the number of stored chunks.
	Count() int
}
