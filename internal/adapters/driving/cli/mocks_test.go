package cli

import (
	"context"
	"errors"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// mockChatService returns canned retrieval and generation results and
// records what it was asked.
type mockChatService struct {
	lastQuery     string
	lastSessionID *int64
	lastTopK      int
	results       []domain.ScoredChunk
	response      string
}

func (m *mockChatService) ProcessQuery(_ context.Context, query string, sessionID *int64) domain.QueryResult {
	m.lastQuery = query
	m.lastSessionID = sessionID
	return domain.QueryResult{
		Response:       m.response,
		RelevantChunks: []domain.Chunk{{ID: "kb_1", Content: "chunk"}},
		DocumentsCount: 1,
		Latency:        0.042,
		Success:        true,
	}
}

func (m *mockChatService) Search(_ context.Context, query string, topK int) []domain.ScoredChunk {
	m.lastQuery = query
	m.lastTopK = topK
	return m.results
}

func (m *mockChatService) LoadKnowledgeBase(_ context.Context, _ []domain.IngestInput) error {
	return nil
}

// mockIngestService records file and bulk ingests.
type mockIngestService struct {
	ingested  []string
	bulkItems []domain.IngestInput
	fileErr   error
}

func (m *mockIngestService) IngestDocument(_ context.Context, _ domain.IngestInput) bool { return true }

func (m *mockIngestService) IngestBulk(_ context.Context, items []domain.IngestInput) bool {
	m.bulkItems = append(m.bulkItems, items...)
	return len(items) > 0
}
func (m *mockIngestService) UpsertDocument(_ context.Context, _ domain.IngestInput) bool { return true }

func (m *mockIngestService) IngestFile(_ context.Context, path string) (string, error) {
	if m.fileErr != nil {
		return "", m.fileErr
	}
	m.ingested = append(m.ingested, path)
	return "file_deadbeef01234567", nil
}

// mockKnowledgeIndex is the minimal index surface the status and reset
// commands touch.
type mockKnowledgeIndex struct {
	count     int
	resets    int
	verifyErr error
}

func (m *mockKnowledgeIndex) Initialize(context.Context) error             { return nil }
func (m *mockKnowledgeIndex) Add(context.Context, []domain.Chunk) error    { return nil }
func (m *mockKnowledgeIndex) Upsert(context.Context, []domain.Chunk) error { return nil }

func (m *mockKnowledgeIndex) Reset(context.Context) error {
	m.resets++
	m.count = 0
	return nil
}

func (m *mockKnowledgeIndex) Search(context.Context, string, int) []domain.ScoredChunk { return nil }
func (m *mockKnowledgeIndex) Exists(string) bool                                       { return false }
func (m *mockKnowledgeIndex) OrderedIDs() []string                                     { return nil }
func (m *mockKnowledgeIndex) Count() int                                               { return m.count }
func (m *mockKnowledgeIndex) VerifyPersisted() error                                   { return m.verifyErr }

// mockMaintenanceService returns fixed cleanup counts.
type mockMaintenanceService struct {
	messages int64
	sessions int64
	err      error
}

func (m *mockMaintenanceService) CleanupChats(context.Context) (int64, int64, error) {
	if m.err != nil {
		return 0, 0, m.err
	}
	return m.messages, m.sessions, nil
}

var errMockService = errors.New("mock service failure")

// setupTestServices installs mock services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	oldChat := chatService
	oldIngest := ingestService
	oldMaintenance := maintenanceService
	oldStore := chatStore
	oldIndex := knowledgeIndex

	chatService = &mockChatService{
		response: "The answer.",
		results: []domain.ScoredChunk{
			{Chunk: domain.Chunk{ID: "kb_1", Title: "Shipping policy", Content: "Ships in five days."}, Score: 0.91},
			{Chunk: domain.Chunk{ID: "kb_2", Content: "Returns accepted within 30 days."}, Score: 0.47},
		},
	}
	ingestService = &mockIngestService{}
	maintenanceService = &mockMaintenanceService{messages: 3, sessions: 1}
	knowledgeIndex = &mockKnowledgeIndex{count: 7}

	return func() {
		chatService = oldChat
		ingestService = oldIngest
		maintenanceService = oldMaintenance
		chatStore = oldStore
		knowledgeIndex = oldIndex
	}
}
