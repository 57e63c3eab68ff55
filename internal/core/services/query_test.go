package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

func newTestQueryService(index *mockIndex, llm *mockLLM, chats *mockChatStore) *QueryService {
	gen := NewGenerator(llm, fastConfig())
	ingester := NewIngestService(index, 0)
	return NewQueryService(index, gen, chats, ingester, QueryServiceConfig{})
}

func TestProcessQuery_BlankQueryRejected(t *testing.T) {
	index := newMockIndex()
	llm := &mockLLM{responses: []string{"should not run"}}
	svc := newTestQueryService(index, llm, nil)

	result := svc.ProcessQuery(context.Background(), "   \t  ", nil)

	assert.False(t, result.Success)
	assert.Equal(t, "Please provide a valid query.", result.Response)
	assert.Empty(t, result.RelevantChunks)
	assert.Zero(t, result.DocumentsCount)
	assert.Equal(t, 0, llm.calls)
	assert.Empty(t, index.searchLog, "retrieval must not run for blank input")
}

func TestProcessQuery_FullPipeline(t *testing.T) {
	index := newMockIndex()
	index.results = []domain.ScoredChunk{
		scored("doc_1_1", "Shipping", "Ships in 5 days.", 0.8),
		scored("doc_2_1", "Returns", "30 day returns.", 0.5),
	}
	llm := &mockLLM{responses: []string{"It ships in five days."}}
	svc := newTestQueryService(index, llm, nil)

	result := svc.ProcessQuery(context.Background(), "how long does shipping take?", nil)

	assert.True(t, result.Success)
	assert.Equal(t, "It ships in five days.", result.Response)
	require.Len(t, result.RelevantChunks, 2)
	assert.Equal(t, "doc_1_1", result.RelevantChunks[0].ID)
	assert.Equal(t, 2, result.DocumentsCount)
	assert.Contains(t, llm.lastContext, "Document 1: Shipping")
	assert.Contains(t, result.ContextUsed, "Knowledge Base Context:")
	assert.GreaterOrEqual(t, result.Latency, 0.0)
}

func TestProcessQuery_NoResultsStillGenerates(t *testing.T) {
	index := newMockIndex()
	llm := &mockLLM{responses: []string{"I don't know."}}
	svc := newTestQueryService(index, llm, nil)

	result := svc.ProcessQuery(context.Background(), "anything", nil)

	assert.True(t, result.Success)
	assert.Equal(t, NoContextSentinel, llm.lastContext[:len(NoContextSentinel)])
	assert.Zero(t, result.DocumentsCount)
	assert.Empty(t, result.RelevantChunks)
}

func TestProcessQuery_HistoryPassedOldestFirst(t *testing.T) {
	index := newMockIndex()
	chats := &mockChatStore{history: []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "first"},
		{Role: domain.RoleAssistant, Content: "second"},
	}}
	llm := &mockLLM{responses: []string{"ok"}}
	svc := newTestQueryService(index, llm, chats)

	sessionID := int64(7)
	svc.ProcessQuery(context.Background(), "q", &sessionID)

	require.Len(t, llm.lastHistory, 2)
	assert.Equal(t, "first", llm.lastHistory[0].Content)
}

func TestProcessQuery_HistoryErrorDegradesToNone(t *testing.T) {
	index := newMockIndex()
	chats := &mockChatStore{historyErr: errors.New("store offline")}
	llm := &mockLLM{responses: []string{"ok"}}
	svc := newTestQueryService(index, llm, chats)

	sessionID := int64(7)
	result := svc.ProcessQuery(context.Background(), "q", &sessionID)

	assert.True(t, result.Success)
	assert.Empty(t, llm.lastHistory)
}

func TestProcessQuery_ContextPreviewTruncated(t *testing.T) {
	long := make([]byte, 600)
	for i := range long {
		long[i] = 'x'
	}
	index := newMockIndex()
	index.results = []domain.ScoredChunk{scored("a", "Big", string(long), 0.9)}
	llm := &mockLLM{responses: []string{"ok"}}
	svc := newTestQueryService(index, llm, nil)

	result := svc.ProcessQuery(context.Background(), "q", nil)

	assert.Len(t, result.ContextUsed, 503)
	assert.Equal(t, "...", result.ContextUsed[500:])
}

func TestProcessQuery_PanicShapedIntoFailure(t *testing.T) {
	index := newMockIndex()
	// A nil generator dereference inside the pipeline must not escape.
	svc := NewQueryService(index, nil, nil, NewIngestService(index, 0), QueryServiceConfig{})

	result := svc.ProcessQuery(context.Background(), "q", nil)

	assert.False(t, result.Success)
	assert.Equal(t, "Sorry, I had trouble processing your request.", result.Response)
	assert.NotNil(t, result.RelevantChunks)
}

func TestSearch_DelegatesWithDefaultTopK(t *testing.T) {
	index := newMockIndex()
	index.results = []domain.ScoredChunk{
		scored("a", "", "1", 0.9), scored("b", "", "2", 0.8),
		scored("c", "", "3", 0.7), scored("d", "", "4", 0.6),
	}
	svc := newTestQueryService(index, &mockLLM{}, nil)

	assert.Len(t, svc.Search(context.Background(), "q", 0), defaultTopK)
	assert.Len(t, svc.Search(context.Background(), "q", 2), 2)
}

func TestLoadKnowledgeBase_SkipsAlreadyIndexed(t *testing.T) {
	index := newMockIndex()
	svc := newTestQueryService(index, &mockLLM{}, nil)
	ctx := context.Background()

	docs := []domain.IngestInput{
		{DocumentID: "doc_1", Title: "A", Content: "alpha content"},
		{DocumentID: "doc_2", Title: "B", Content: "beta content"},
	}
	require.NoError(t, svc.LoadKnowledgeBase(ctx, docs))
	firstCalls := index.addCalls

	// Second load finds everything indexed and does nothing.
	require.NoError(t, svc.LoadKnowledgeBase(ctx, docs))
	assert.Equal(t, firstCalls, index.addCalls)
	assert.True(t, index.Exists("doc_1_1"))
	assert.True(t, index.Exists("doc_2_1"))
}

func TestRoundLatency(t *testing.T) {
	assert.InDelta(t, 0.123, roundLatency(123456*time.Microsecond), 1e-9)
	assert.InDelta(t, 1.5, roundLatency(1500*time.Millisecond), 1e-9)
}
