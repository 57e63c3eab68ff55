package domain

import "unicode/utf8"

// contextPreviewLimit bounds the ContextUsed echo in a QueryResult.
const contextPreviewLimit = 500

// QueryResult is the shaped outcome of one RAG query. The orchestrator
// always returns a well-formed QueryResult - internal failures are folded
// into Response/Success, never surfaced as errors to the boundary caller.
type QueryResult struct {
	// Response is the generated (or fallback) answer text.
	Response string `json:"response"`

	// RelevantChunks are the retrieved chunks in ranking order.
	RelevantChunks []Chunk `json:"relevant_documents"`

	// Latency is the wall-clock duration of retrieve+generate in
	// seconds, rounded to three decimals.
	Latency float64 `json:"latency"`

	// DocumentsCount is len(RelevantChunks).
	DocumentsCount int `json:"documents_count"`

	// ContextUsed echoes the prompt context, truncated to 500
	// characters plus an ellipsis when longer.
	ContextUsed string `json:"context_used"`

	// Success is false only for rejected input or an
	// orchestration-level failure; a fallback answer still counts as a
	// successful pipeline run.
	Success bool `json:"success"`
}

// TruncateContext applies the ContextUsed preview limit. The cut
// backs up to a rune boundary so multi-byte content is never split
// mid-sequence.
func TruncateContext(context string) string {
	if len(context) <= contextPreviewLimit {
		return context
	}
	cut := contextPreviewLimit
	for cut > 0 && !utf8.RuneStart(context[cut]) {
		cut--
	}
	return context[:cut] + "..."
}

// IngestInput is one source document presented for ingestion. It is the
// collaborator contract: the document persistence layer supplies these,
// the ingest service turns them into validated chunks.
type IngestInput struct {
	// DocumentID is the source document identifier. Optional; a random
	// id is assigned when absent.
	DocumentID string

	// Title is the document title carried onto every chunk.
	Title string

	// Content is the raw text to window into chunks.
	Content string

	// DocType, Category, Tags are descriptive metadata.
	DocType  string
	Category string
	Tags     []string

	// Source is the provenance tag; defaults to SourceDatabase.
	Source string
}
