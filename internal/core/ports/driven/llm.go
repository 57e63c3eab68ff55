package driven

import (
	"context"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// LLMService performs a single chat-style generation call. Retry,
// backoff and fallback wording live in the core Generator service; an
// adapter only translates one request and reports transport or API
// failures as errors.
//
// Implementations may include:
//   - Gemini generateContent over HTTP
//   - local inference servers with a compatible API
type LLMService interface {
	// Generate produces an answer for query given the prompt context
	// and prior conversation history (oldest first). The adapter maps
	// domain roles onto provider role names. An empty response with a
	// nil error is possible and is handled by the caller.
	Generate(ctx context.Context, query, context string, history []domain.ChatMessage, opts GenerateOptions) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string
}

// GenerateOptions configures a generation call.
type GenerateOptions struct {
	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// MaxOutputTokens bounds the generated answer length.
	MaxOutputTokens int
}
