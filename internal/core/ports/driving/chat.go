package driving

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// ChatService answers user queries through the RAG pipeline.
type ChatService interface {
	// ProcessQuery runs retrieve -> context -> history -> generate for
	// one query. sessionID selects conversation history; nil means no
	// history. The result is always well-formed - validation failures
	// and internal faults are reported through Success/Response, never
	// as an error or panic.
	ProcessQuery(ctx context.Context, query string, sessionID *int64) domain.QueryResult

	// Search exposes raw retrieval for inspection tooling (CLI search,
	// MCP search tool). Ranking order matches what ProcessQuery uses.
	Search(ctx context.Context, query string, topK int) []domain.ScoredChunk

	// LoadKnowledgeBase bulk-adds collaborator-supplied documents that
	// are not yet indexed. Used at startup preload.
	LoadKnowledgeBase(ctx context.Context, docs []domain.IngestInput) error
}

// IngestService turns raw document text into indexed chunks.
type IngestService interface {
	// IngestDocument chunks and inserts one document. Returns false
	// when the content is blank or indexing failed; failures are
	// logged, not raised, so batch pipelines can continue.
	IngestDocument(ctx context.Context, in domain.IngestInput) bool

	// IngestBulk prepares chunks for all items and inserts them in one
	// batch so embedding cost is amortised. Returns false (nothing
	// ingested) when no item has non-blank content.
	IngestBulk(ctx context.Context, items []domain.IngestInput) bool

	// UpsertDocument replaces a document's chunks by id, overwriting
	// existing content. Triggers a full index rebuild.
	UpsertDocument(ctx context.Context, in domain.IngestInput) bool

	// IngestFile reads a file from disk and ingests it with
	// upsert semantics, so repeated ingests of an edited file replace
	// its content. Returns the derived document id.
	IngestFile(ctx context.Context, path string) (string, error)
}

// MaintenanceService exposes housekeeping operations.
type MaintenanceService interface {
	// CleanupChats deletes messages older than the retention window and
	// then removes empty sessions. Returns (messages, sessions) deleted.
	CleanupChats(ctx context.Context) (int64, int64, error)
}
