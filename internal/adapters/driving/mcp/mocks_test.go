package mcp

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	searchResults []domain.ScoredChunk
	queryResult   domain.QueryResult

	lastQuery     string
	lastTopK      int
	lastSessionID *int64
}

func (m *mockChatService) ProcessQuery(_ context.Context, query string, sessionID *int64) domain.QueryResult {
	m.lastQuery = query
	m.lastSessionID = sessionID
	return m.queryResult
}

func (m *mockChatService) Search(_ context.Context, query string, topK int) []domain.ScoredChunk {
	m.lastQuery = query
	m.lastTopK = topK
	return m.searchResults
}

func (m *mockChatService) LoadKnowledgeBase(_ context.Context, _ []domain.IngestInput) error {
	return nil
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	ok        bool
	lastInput domain.IngestInput
}

func (m *mockIngestService) IngestDocument(_ context.Context, in domain.IngestInput) bool {
	m.lastInput = in
	return m.ok
}

func (m *mockIngestService) IngestBulk(_ context.Context, _ []domain.IngestInput) bool {
	return m.ok
}

func (m *mockIngestService) UpsertDocument(_ context.Context, in domain.IngestInput) bool {
	m.lastInput = in
	return m.ok
}

func (m *mockIngestService) IngestFile(_ context.Context, _ string) (string, error) {
	return "file_mock", nil
}
