package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// mockIndex is a hand-written KnowledgeIndex double backed by a map.
type mockIndex struct {
	mu      sync.Mutex
	docs    map[string]domain.Chunk
	order   []string
	results []domain.ScoredChunk

	addErr     error
	upsertErr  error
	addCalls   int
	lastAdded  []domain.Chunk
	searchLog  []string
	upsertLog  [][]domain.Chunk
	resetCalls int
}

func newMockIndex() *mockIndex {
	return &mockIndex{docs: make(map[string]domain.Chunk)}
}

func (m *mockIndex) Initialize(_ context.Context) error { return nil }

func (m *mockIndex) Add(_ context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls++
	if m.addErr != nil {
		return m.addErr
	}
	m.lastAdded = chunks
	for _, c := range chunks {
		if _, ok := m.docs[c.ID]; !ok {
			m.order = append(m.order, c.ID)
		}
		m.docs[c.ID] = c
	}
	return nil
}

func (m *mockIndex) Upsert(_ context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upsertLog = append(m.upsertLog, chunks)
	for _, c := range chunks {
		if _, ok := m.docs[c.ID]; !ok {
			m.order = append(m.order, c.ID)
		}
		m.docs[c.ID] = c
	}
	return nil
}

func (m *mockIndex) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetCalls++
	m.docs = make(map[string]domain.Chunk)
	m.order = nil
	return nil
}

func (m *mockIndex) Search(_ context.Context, query string, topK int) []domain.ScoredChunk {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchLog = append(m.searchLog, query)
	if strings.TrimSpace(query) == "" {
		return []domain.ScoredChunk{}
	}
	if topK > len(m.results) {
		topK = len(m.results)
	}
	return m.results[:topK]
}

func (m *mockIndex) Exists(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[id]
	return ok
}

func (m *mockIndex) OrderedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

func (m *mockIndex) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// mockLLM is a hand-written LLMService double with a scripted sequence
// of outcomes.
type mockLLM struct {
	responses []string
	errs      []error
	calls     int

	lastQuery   string
	lastContext string
	lastHistory []domain.ChatMessage
	lastOpts    driven.GenerateOptions
}

func (m *mockLLM) Generate(
	_ context.Context,
	query, promptContext string,
	history []domain.ChatMessage,
	opts driven.GenerateOptions,
) (string, error) {
	i := m.calls
	m.calls++
	m.lastQuery = query
	m.lastContext = promptContext
	m.lastHistory = history
	m.lastOpts = opts

	if i < len(m.errs) && m.errs[i] != nil {
		return "", m.errs[i]
	}
	if i < len(m.responses) {
		return m.responses[i], nil
	}
	return "", nil
}

func (m *mockLLM) ModelName() string { return "mock-llm" }

// mockChatStore is a hand-written ChatStore double.
type mockChatStore struct {
	history    []domain.ChatMessage
	historyErr error

	deletedMessages int64
	deletedSessions int64
	deleteMsgErr    error
	deleteSessErr   error
	lastCutoff      time.Time
}

func (m *mockChatStore) CreateSession(_ context.Context) (*domain.ChatSession, error) {
	return &domain.ChatSession{ID: 1}, nil
}

func (m *mockChatStore) GetSession(_ context.Context, id int64) (*domain.ChatSession, error) {
	return &domain.ChatSession{ID: id}, nil
}

func (m *mockChatStore) ListSessions(_ context.Context) ([]domain.ChatSession, error) {
	return nil, nil
}

func (m *mockChatStore) SaveMessage(_ context.Context, _ *domain.ChatMessage) error {
	return nil
}

func (m *mockChatStore) History(_ context.Context, _ int64, limit int) ([]domain.ChatMessage, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	if limit > len(m.history) {
		limit = len(m.history)
	}
	return m.history[len(m.history)-limit:], nil
}

func (m *mockChatStore) DeleteMessagesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.lastCutoff = cutoff
	return m.deletedMessages, m.deleteMsgErr
}

func (m *mockChatStore) DeleteEmptySessions(_ context.Context) (int64, error) {
	return m.deletedSessions, m.deleteSessErr
}

func (m *mockChatStore) Close() error { return nil }

func scored(id, title, content string, score float64) domain.ScoredChunk {
	return domain.ScoredChunk{
		Chunk: domain.Chunk{ID: id, Title: title, Content: content},
		Score: score,
	}
}
