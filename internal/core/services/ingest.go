package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// DefaultChunkWindow is the fixed chunk size in bytes.
const DefaultChunkWindow = 500

// IngestService windows document text into chunks and feeds them to the
// knowledge index.
type IngestService struct {
	index  driven.KnowledgeIndex
	window int
}

// NewIngestService creates an ingest service. window <= 0 takes the
// default chunk size.
func NewIngestService(index driven.KnowledgeIndex, window int) *IngestService {
	if window <= 0 {
		window = DefaultChunkWindow
	}
	return &IngestService{index: index, window: window}
}

// ChunkText splits text into fixed non-overlapping byte windows. The
// last chunk may be shorter. Empty text yields no chunks.
func ChunkText(text string, window int) []string {
	if window <= 0 {
		window = DefaultChunkWindow
	}
	var chunks []string
	for i := 0; i < len(text); i += window {
		end := i + window
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])
	}
	return chunks
}

// IngestDocument chunks and inserts one document. Returns false when
// the content is blank or indexing failed.
func (s *IngestService) IngestDocument(ctx context.Context, in domain.IngestInput) bool {
	chunks := s.prepareChunks(in)
	if len(chunks) == 0 {
		logger.Warn("Skipping ingestion: empty or invalid document")
		return false
	}

	if err := s.index.Add(ctx, chunks); err != nil {
		logger.Error("Failed to ingest document %s: %v", in.DocumentID, err)
		return false
	}

	logger.Info("Ingested document %s (%d chunks)", in.DocumentID, len(chunks))
	return true
}

// IngestBulk prepares chunks for every item and inserts them in one
// batch so embedding cost is amortised. Items with blank content are
// skipped; returns false when nothing was ingested.
func (s *IngestService) IngestBulk(ctx context.Context, items []domain.IngestInput) bool {
	var prepared []domain.Chunk
	for _, in := range items {
		prepared = append(prepared, s.prepareChunks(in)...)
	}
	if len(prepared) == 0 {
		logger.Warn("No valid documents to ingest")
		return false
	}

	if err := s.index.Add(ctx, prepared); err != nil {
		logger.Error("Bulk ingestion failed: %v", err)
		return false
	}

	logger.Info("Bulk ingested %d chunks from %d documents", len(prepared), len(items))
	return true
}

// UpsertDocument replaces a document's chunks, overwriting existing
// content by id.
func (s *IngestService) UpsertDocument(ctx context.Context, in domain.IngestInput) bool {
	chunks := s.prepareChunks(in)
	if len(chunks) == 0 {
		logger.Warn("Skipping upsert: empty or invalid document")
		return false
	}

	if err := s.index.Upsert(ctx, chunks); err != nil {
		logger.Error("Failed to upsert document %s: %v", in.DocumentID, err)
		return false
	}

	logger.Info("Upserted document %s (%d chunks)", in.DocumentID, len(chunks))
	return true
}

// IngestFile reads a file and ingests it with upsert semantics, so
// re-ingesting an edited file replaces its chunks. The document id is
// derived from the absolute path, keeping repeat ingests stable.
func (s *IngestService) IngestFile(ctx context.Context, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	docID := fileDocID(abs)
	in := domain.IngestInput{
		DocumentID: docID,
		Title:      filepath.Base(abs),
		Content:    string(data),
		DocType:    "file",
		Source:     domain.SourceFile,
	}
	if !s.UpsertDocument(ctx, in) {
		return "", fmt.Errorf("%w: file %s has no ingestible content", domain.ErrInvalidInput, path)
	}
	return docID, nil
}

// prepareChunks windows one document into chunk records. Chunk ids are
// "{docID}_{n}" with a 1-based window ordinal, or random when the input
// carries no document id.
func (s *IngestService) prepareChunks(in domain.IngestInput) []domain.Chunk {
	if strings.TrimSpace(in.Content) == "" {
		return nil
	}

	docID := in.DocumentID
	if docID == "" {
		docID = uuid.NewString()
	}
	source := in.Source
	if source == "" {
		source = domain.SourceDatabase
	}

	pieces := ChunkText(in.Content, s.window)
	chunks := make([]domain.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = domain.Chunk{
			ID:       fmt.Sprintf("%s_%d", docID, i+1),
			Content:  piece,
			Title:    in.Title,
			DocType:  in.DocType,
			Category: in.Category,
			Tags:     in.Tags,
			Source:   source,
		}
	}
	return chunks
}

// fileDocID derives a stable document id from a file path.
func fileDocID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return "file_" + hex.EncodeToString(hash[:8])
}
