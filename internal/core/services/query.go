package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.ChatService = (*QueryService)(nil)

// Fixed response texts for rejected input and orchestration faults.
const (
	responseInvalidQuery = "Please provide a valid query."
	responsePanic        = "Sorry, I had trouble processing your request."
)

// Default retrieval parameters.
const (
	defaultTopK         = 3
	defaultHistoryLimit = 5
)

// QueryServiceConfig holds tuning for the orchestrator. Zero values
// take the defaults above.
type QueryServiceConfig struct {
	TopK         int
	HistoryLimit int
}

// QueryService runs the retrieve, contextualise, generate pipeline for
// one query at a time. It always returns a shaped QueryResult; faults
// anywhere in the pipeline degrade the result instead of erroring.
type QueryService struct {
	index        driven.KnowledgeIndex
	generator    *Generator
	chats        driven.ChatStore
	ingester     driving.IngestService
	topK         int
	historyLimit int
}

// NewQueryService creates the orchestrator. chats may be nil when no
// session store is wired (stateless ask); history is then skipped.
func NewQueryService(
	index driven.KnowledgeIndex,
	generator *Generator,
	chats driven.ChatStore,
	ingester driving.IngestService,
	cfg QueryServiceConfig,
) *QueryService {
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}

	return &QueryService{
		index:        index,
		generator:    generator,
		chats:        chats,
		ingester:     ingester,
		topK:         cfg.TopK,
		historyLimit: cfg.HistoryLimit,
	}
}

// ProcessQuery answers one query. A blank query is rejected without
// touching retrieval or generation.
func (s *QueryService) ProcessQuery(ctx context.Context, query string, sessionID *int64) (result domain.QueryResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Query processing panicked: %v", r)
			result = domain.QueryResult{
				Response:       responsePanic,
				RelevantChunks: []domain.Chunk{},
				Success:        false,
			}
		}
	}()

	if strings.TrimSpace(query) == "" {
		return domain.QueryResult{
			Response:       responseInvalidQuery,
			RelevantChunks: []domain.Chunk{},
			Success:        false,
		}
	}

	start := time.Now()

	relevant := s.index.Search(ctx, query, s.topK)
	promptContext := BuildContext(relevant)
	history := s.history(ctx, sessionID)

	response := s.generator.Generate(ctx, query, promptContext, history)

	latency := roundLatency(time.Since(start))
	logger.Info("Processed query in %.3fs (%d documents)", latency, len(relevant))

	chunks := make([]domain.Chunk, len(relevant))
	for i, r := range relevant {
		chunks[i] = r.Chunk
	}

	return domain.QueryResult{
		Response:       response,
		RelevantChunks: chunks,
		Latency:        latency,
		DocumentsCount: len(relevant),
		ContextUsed:    domain.TruncateContext(promptContext),
		Success:        true,
	}
}

// Search exposes raw retrieval with the same ranking ProcessQuery uses.
func (s *QueryService) Search(ctx context.Context, query string, topK int) []domain.ScoredChunk {
	if topK <= 0 {
		topK = s.topK
	}
	return s.index.Search(ctx, query, topK)
}

// LoadKnowledgeBase bulk-adds the supplied documents, skipping any
// whose first chunk is already indexed.
func (s *QueryService) LoadKnowledgeBase(ctx context.Context, docs []domain.IngestInput) error {
	var fresh []domain.IngestInput
	for _, doc := range docs {
		if doc.DocumentID != "" && s.index.Exists(doc.DocumentID+"_1") {
			continue
		}
		fresh = append(fresh, doc)
	}
	if len(fresh) == 0 {
		logger.Debug("Knowledge base already loaded (%d chunks indexed)", s.index.Count())
		return nil
	}

	if !s.ingester.IngestBulk(ctx, fresh) {
		return fmt.Errorf("%w: none of %d documents could be loaded", domain.ErrIndexUnavailable, len(fresh))
	}
	logger.Info("Loaded %d new documents into the knowledge base", len(fresh))
	return nil
}

// history fetches the last N turns of a session, oldest first. Any
// store failure degrades to no history.
func (s *QueryService) history(ctx context.Context, sessionID *int64) []domain.ChatMessage {
	if sessionID == nil || s.chats == nil {
		return nil
	}
	msgs, err := s.chats.History(ctx, *sessionID, s.historyLimit)
	if err != nil {
		logger.Warn("Loading history for session %d failed: %v", *sessionID, err)
		return nil
	}
	return msgs
}

// roundLatency converts a duration to seconds with three decimals.
func roundLatency(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
