package flat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// docStore is the ordered id -> chunk mapping behind the index. It is
// the source of truth: the vector index is rebuilt from it and row i of
// the index always corresponds to order[i]. The store is owned
// exclusively by Index, which serialises all access.
type docStore struct {
	order []string
	docs  map[string]domain.Chunk
}

func newDocStore() *docStore {
	return &docStore{docs: make(map[string]domain.Chunk)}
}

// exists reports whether id is stored.
func (s *docStore) exists(id string) bool {
	_, ok := s.docs[id]
	return ok
}

// put inserts a new chunk (appending its id to the order) or overwrites
// an existing one in place without changing its position.
func (s *docStore) put(chunk domain.Chunk) {
	if !s.exists(chunk.ID) {
		s.order = append(s.order, chunk.ID)
	}
	s.docs[chunk.ID] = chunk
}

// get returns the chunk for id.
func (s *docStore) get(id string) (domain.Chunk, bool) {
	chunk, ok := s.docs[id]
	return chunk, ok
}

// orderedIDs returns a copy of the ids in insertion order.
func (s *docStore) orderedIDs() []string {
	ids := make([]string, len(s.order))
	copy(ids, s.order)
	return ids
}

// contentsInOrder returns chunk contents in insertion order, used for
// index rebuilds.
func (s *docStore) contentsInOrder() []string {
	contents := make([]string, 0, len(s.order))
	for _, id := range s.order {
		if chunk, ok := s.docs[id]; ok {
			contents = append(contents, chunk.Content)
		}
	}
	return contents
}

// clear removes all chunks.
func (s *docStore) clear() {
	s.order = nil
	s.docs = make(map[string]domain.Chunk)
}

func (s *docStore) len() int {
	return len(s.order)
}

// docstoreFile is the persisted JSON shape:
// {"order": [id, ...], "docs": {id: chunk-fields...}}.
type docstoreFile struct {
	Order []string                `json:"order"`
	Docs  map[string]domain.Chunk `json:"docs"`
}

// save serialises the id order and the id->chunk mapping as one unit.
// The file is written to a temp path and renamed so a crash never leaves
// a partially written store behind.
func (s *docStore) save(path string) error {
	data, err := json.Marshal(docstoreFile{Order: s.order, Docs: s.docs})
	if err != nil {
		return fmt.Errorf("marshalling docstore: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing docstore: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing docstore: %w", err)
	}
	return nil
}

// load replaces the store contents from the persisted file. A missing
// file yields an empty store; a file that cannot be decoded is reported
// as domain.ErrCorruptState and leaves the store empty.
func (s *docStore) load(path string) error {
	s.clear()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading docstore: %w", err)
	}

	var file docstoreFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("%w: docstore %s: %v", domain.ErrCorruptState, filepath.Base(path), err)
	}

	if file.Docs == nil {
		file.Docs = make(map[string]domain.Chunk)
	}

	// Drop order entries with no backing chunk so the index rebuild
	// stays aligned even after a hand-edited store.
	order := make([]string, 0, len(file.Order))
	for _, id := range file.Order {
		if _, ok := file.Docs[id]; ok {
			order = append(order, id)
		}
	}

	s.order = order
	s.docs = file.Docs
	return nil
}
