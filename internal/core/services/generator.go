package services

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// Fixed response texts for the generation fallback paths.
const (
	FallbackNotConfigured = "AI service is not configured."
	FallbackEmpty         = "I couldn't generate a response."
	FallbackExhausted     = "Sorry, I had trouble generating a response. Please try again later."
)

// Default generation parameters.
const (
	defaultAttempts        = 3
	defaultAttemptDelay    = 1 * time.Second
	defaultRequestsPerMin  = 60
	defaultTemperature     = 0.7
	defaultMaxOutputTokens = 512
)

// GeneratorConfig holds tuning for the retrying generator. Zero values
// take the defaults above. Temperature is a pointer so an explicit 0.0
// (deterministic) is distinguishable from unset.
type GeneratorConfig struct {
	Attempts          int
	AttemptDelay      time.Duration
	RequestsPerMinute int
	Temperature       *float64
	MaxOutputTokens   int
}

// Generator wraps an LLM service with retry, rate limiting and fixed
// fallback answers. Its Generate never returns an error: every failure
// mode maps to a fallback string so the orchestrator always has a
// response to hand back.
type Generator struct {
	llm      driven.LLMService
	limiter  *rate.Limiter
	attempts int
	delay    time.Duration
	opts     driven.GenerateOptions
}

// NewGenerator creates a generator. llm may be nil when no API key is
// configured; Generate then answers with FallbackNotConfigured.
func NewGenerator(llm driven.LLMService, cfg GeneratorConfig) *Generator {
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.AttemptDelay <= 0 {
		cfg.AttemptDelay = defaultAttemptDelay
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMin
	}
	temperature := defaultTemperature
	if cfg.Temperature != nil && *cfg.Temperature >= 0 {
		temperature = *cfg.Temperature
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = defaultMaxOutputTokens
	}

	return &Generator{
		llm:      llm,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1),
		attempts: cfg.Attempts,
		delay:    cfg.AttemptDelay,
		opts: driven.GenerateOptions{
			Temperature:     temperature,
			MaxOutputTokens: cfg.MaxOutputTokens,
		},
	}
}

// Configured reports whether a real LLM backend is wired in.
func (g *Generator) Configured() bool {
	return g.llm != nil
}

// Generate answers query with the given prompt context and history.
// Transport and API errors are retried up to the attempt budget with a
// fixed delay between attempts; a successful call with blank text is
// not retried and maps to FallbackEmpty.
func (g *Generator) Generate(ctx context.Context, query, promptContext string, history []domain.ChatMessage) string {
	if g.llm == nil {
		return FallbackNotConfigured
	}

	for attempt := 1; attempt <= g.attempts; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			logger.Warn("Generation aborted while rate limited: %v", err)
			return FallbackExhausted
		}

		text, err := g.llm.Generate(ctx, query, promptContext, history, g.opts)
		if err == nil {
			text = strings.TrimSpace(text)
			if text == "" {
				return FallbackEmpty
			}
			return text
		}

		logger.Warn("Generation attempt %d/%d failed: %v", attempt, g.attempts, err)
		if attempt == g.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return FallbackExhausted
		case <-time.After(g.delay):
		}
	}

	logger.Error("Generation failed after %d attempts", g.attempts)
	return FallbackExhausted
}
