package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) (*LLMService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := New(Config{APIKey: "test-key", BaseURL: server.URL})
	require.NoError(t, err)
	return svc, server
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestGenerate_MapsRolesAndBuildsContents(t *testing.T) {
	var got generateRequest
	svc, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"the answer"}]}}]}`))
	})

	history := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "earlier question"},
		{Role: domain.RoleAssistant, Content: "earlier answer"},
		{Role: "tool", Content: "odd role"},
	}
	answer, err := svc.Generate(context.Background(), "what now?", "ctx text", history, driven.GenerateOptions{
		Temperature:     0.7,
		MaxOutputTokens: 512,
	})
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer)

	require.Len(t, got.Contents, 4)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "user", got.Contents[2].Role, "unrecognised roles fall back to user")
	assert.Equal(t, "what now?", got.Contents[3].Parts[0].Text)

	require.NotNil(t, got.SystemInstruction)
	assert.Contains(t, got.SystemInstruction.Parts[0].Text, "ctx text")
	assert.InDelta(t, 0.7, got.GenerationConfig.Temperature, 1e-9)
	assert.Equal(t, 512, got.GenerationConfig.MaxOutputTokens)
}

func TestGenerate_NoCandidatesIsEmptyNotError(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	answer, err := svc.Generate(context.Background(), "q", "", nil, driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Empty(t, answer)
}

func TestGenerate_APIErrorSurfaced(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid key","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := svc.Generate(context.Background(), "q", "", nil, driven.GenerateOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid key")
}

func TestGenerate_JoinsMultiplePartsAndTrims(t *testing.T) {
	svc, _ := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"part one "},{"text":"part two\n"}]}}]}`))
	})

	answer, err := svc.Generate(context.Background(), "q", "", nil, driven.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "part one part two", answer)
}
