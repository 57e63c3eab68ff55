package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// ChatStore persists chat sessions and messages. The orchestrator only
// reads history through it; the driving adapter (CLI, MCP) writes the
// user and assistant turns around each query.
type ChatStore interface {
	// CreateSession opens a new session with an empty title.
	CreateSession(ctx context.Context) (*domain.ChatSession, error)

	// GetSession retrieves a session by id.
	// Returns domain.ErrNotFound when absent.
	GetSession(ctx context.Context, id int64) (*domain.ChatSession, error)

	// ListSessions returns all sessions, newest first.
	ListSessions(ctx context.Context) ([]domain.ChatSession, error)

	// SaveMessage appends a message to its session. The first user
	// message of a session also sets the session title.
	SaveMessage(ctx context.Context, msg *domain.ChatMessage) error

	// History returns the last limit messages of a session,
	// oldest first.
	History(ctx context.Context, sessionID int64, limit int) ([]domain.ChatMessage, error)

	// DeleteMessagesBefore removes messages created before cutoff and
	// returns how many were deleted.
	DeleteMessagesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteEmptySessions removes sessions with no remaining messages
	// and returns how many were deleted.
	DeleteEmptySessions(ctx context.Context) (int64, error)

	// Close releases resources.
	Close() error
}
