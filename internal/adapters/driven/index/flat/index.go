// Package flat provides an exact nearest-neighbour index over chunk
// embeddings, persisted as a binary blob plus a JSON docstore. The
// docstore is the source of truth; the blob is a derived cache and every
// initialisation rebuilds embeddings from chunk content, so the pair is
// recoverable from metadata alone.
package flat

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.KnowledgeIndex = (*Index)(nil)

// Default file names within the data directory.
const (
	indexFileName    = "knowledge.index"
	docstoreFileName = "docstore.json"
)

// Index is a flat (exact) similarity index aligned positionally with the
// docstore's insertion order.
//
// Mutations (Initialize, Add, Upsert, Reset) are serialised by a single
// writer lock; searches proceed concurrently against the last fully
// built state.
type Index struct {
	mu       sync.RWMutex
	embedder driven.Embedder
	dim      int

	indexPath    string
	docstorePath string

	store   *docStore
	vectors [][]float32

	initOnce sync.Once
	initErr  error
}

// New creates an index using the given embedder, with state files under
// dataDir. If dataDir is empty, defaults to ~/.ragchat/data.
func New(embedder driven.Embedder, dataDir string) (*Index, error) {
	if embedder == nil {
		return nil, fmt.Errorf("flat: embedder is required")
	}
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragchat", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Index{
		embedder:     embedder,
		dim:          embedder.Dimensions(),
		indexPath:    filepath.Join(dataDir, indexFileName),
		docstorePath: filepath.Join(dataDir, docstoreFileName),
		store:        newDocStore(),
	}, nil
}

// Initialize loads the docstore and fully rebuilds the vector index from
// chunk content in insertion order. Safe to call repeatedly: each call
// is another full rebuild, which self-heals drift from external edits to
// the persisted store.
func (idx *Index) Initialize(ctx context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if err := idx.store.load(idx.docstorePath); err != nil {
		return fmt.Errorf("loading docstore: %w", err)
	}
	logger.Debug("Loaded docstore with %d chunks", idx.store.len())

	if err := idx.rebuildLocked(ctx); err != nil {
		return err
	}

	logger.Info("Knowledge index initialised with %d chunks", idx.store.len())
	return nil
}

// EnsureInitialized runs Initialize exactly once. Repeated startup hooks
// share the first result instead of triggering duplicate rebuilds.
func (idx *Index) EnsureInitialized(ctx context.Context) error {
	idx.initOnce.Do(func() {
		idx.initErr = idx.Initialize(ctx)
	})
	return idx.initErr
}

// Add inserts chunks whose ids are not yet stored. Existing ids are
// skipped (pure insert semantics); within a batch the first occurrence
// of an id wins. Only the new chunks are embedded; vectors are appended
// and both files persisted. Nothing is mutated when embedding fails.
func (idx *Index) Add(ctx context.Context, chunks []domain.Chunk) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	seen := make(map[string]struct{})
	var fresh []domain.Chunk
	for _, chunk := range chunks {
		if idx.store.exists(chunk.ID) {
			continue
		}
		if _, ok := seen[chunk.ID]; ok {
			continue
		}
		seen[chunk.ID] = struct{}{}
		fresh = append(fresh, chunk)
	}
	if len(fresh) == 0 {
		return nil
	}

	contents := make([]string, len(fresh))
	for i, chunk := range fresh {
		contents[i] = chunk.Content
	}

	embeddings, err := idx.embed(ctx, contents)
	if err != nil {
		return fmt.Errorf("embedding %d chunks: %w", len(fresh), err)
	}

	idx.vectors = append(idx.vectors, embeddings...)
	for _, chunk := range fresh {
		idx.store.put(chunk)
	}

	if err := idx.persistLocked(); err != nil {
		return err
	}

	logger.Info("Added %d chunks to knowledge index", len(fresh))
	return nil
}

// Upsert inserts new ids and overwrites the content of existing ids in
// place, keeping their position. A flat index has no delete-in-place, so
// any upsert triggers a full rebuild before persisting.
func (idx *Index) Upsert(ctx context.Context, chunks []domain.Chunk) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, chunk := range chunks {
		idx.store.put(chunk)
	}

	if err := idx.rebuildLocked(ctx); err != nil {
		return err
	}
	if err := idx.store.save(idx.docstorePath); err != nil {
		return err
	}

	logger.Info("Upserted %d chunks", len(chunks))
	return nil
}

// Reset clears the index and docstore unconditionally and persists the
// empty state.
func (idx *Index) Reset(_ context.Context) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.store.clear()
	idx.vectors = nil

	if err := idx.persistLocked(); err != nil {
		return err
	}

	logger.Info("Knowledge index reset")
	return nil
}

// Search embeds the query and returns up to topK chunks ordered by
// descending score, where score = 1/(1+distance) for the L2 distance
// between normalised vectors. A blank query, an empty index, or any
// embedding failure yields an empty slice - retrieval degrades
// gracefully rather than failing the caller.
func (idx *Index) Search(ctx context.Context, query string, topK int) []domain.ScoredChunk {
	if strings.TrimSpace(query) == "" {
		return []domain.ScoredChunk{}
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.store.len() == 0 || topK <= 0 {
		return []domain.ScoredChunk{}
	}

	embeddings, err := idx.embed(ctx, []string{query})
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return []domain.ScoredChunk{}
	}
	queryVec := embeddings[0]

	if topK > len(idx.vectors) {
		topK = len(idx.vectors)
	}

	distances := make([]float64, len(idx.vectors))
	order := make([]int, len(idx.vectors))
	for i, row := range idx.vectors {
		distances[i] = l2Distance(queryVec, row)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})

	ids := idx.store.orderedIDs()
	results := make([]domain.ScoredChunk, 0, topK)
	for _, i := range order[:topK] {
		chunk, ok := idx.store.get(ids[i])
		if !ok {
			continue
		}
		results = append(results, domain.ScoredChunk{
			Chunk: chunk,
			Score: 1 / (1 + distances[i]),
		})
	}
	return results
}

// Exists reports whether a chunk id is stored.
func (idx *Index) Exists(id string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.store.exists(id)
}

// OrderedIDs returns the stored ids in insertion order.
func (idx *Index) OrderedIDs() []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.store.orderedIDs()
}

// Count returns the number of stored chunks.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.store.len()
}

// VerifyPersisted checks the on-disk blob against the in-memory state:
// the file must decode with the index dimension and hold one row per
// stored chunk. Used by status reporting to surface corrupt or stale
// state files without mutating anything.
func (idx *Index) VerifyPersisted() error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	data, err := os.ReadFile(idx.indexPath)
	if err != nil {
		if os.IsNotExist(err) {
			if idx.store.len() == 0 {
				return nil
			}
			return fmt.Errorf("%w: index file missing for %d chunks", domain.ErrCorruptState, idx.store.len())
		}
		return fmt.Errorf("reading index file: %w", err)
	}

	vectors, err := decodeVectors(data, idx.dim)
	if err != nil {
		return err
	}
	if len(vectors) != idx.store.len() {
		return fmt.Errorf("%w: index file has %d rows, docstore has %d chunks", domain.ErrCorruptState, len(vectors), idx.store.len())
	}
	return nil
}

// rebuildLocked recomputes every embedding from docstore content in
// insertion order and persists the index blob. Caller holds the write
// lock. State is only replaced when embedding the full corpus succeeded.
func (idx *Index) rebuildLocked(ctx context.Context) error {
	contents := idx.store.contentsInOrder()

	var vectors [][]float32
	if len(contents) > 0 {
		embeddings, err := idx.embed(ctx, contents)
		if err != nil {
			return fmt.Errorf("rebuilding index: %w", err)
		}
		vectors = embeddings
	}

	idx.vectors = vectors
	return saveBlob(idx.indexPath, idx.dim, idx.vectors)
}

// persistLocked writes the index blob and the docstore together, the
// two halves of one logical mutation. Caller holds the write lock.
func (idx *Index) persistLocked() error {
	if err := saveBlob(idx.indexPath, idx.dim, idx.vectors); err != nil {
		return err
	}
	return idx.store.save(idx.docstorePath)
}

// embed runs the embedder and validates row dimensions against the
// index dimension fixed at construction.
func (idx *Index) embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings, err := idx.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", domain.ErrCorruptState, len(embeddings), len(texts))
	}
	for _, row := range embeddings {
		if len(row) != idx.dim {
			return nil, fmt.Errorf("%w: row has %d dims, index has %d", domain.ErrDimensionMismatch, len(row), idx.dim)
		}
	}
	return embeddings, nil
}

// l2Distance computes the Euclidean distance between two vectors.
func l2Distance(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
