// Package memory provides in-memory implementations of driven ports,
// used in tests and as lightweight defaults.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// Ensure ChatStore implements the interface.
var _ driven.ChatStore = (*ChatStore)(nil)

// ChatStore is an in-memory chat store with the same behaviour as the
// SQLite adapter.
type ChatStore struct {
	mu       sync.RWMutex
	sessions map[int64]*domain.ChatSession
	messages []domain.ChatMessage
	nextSess int64
	nextMsg  int64
}

// NewChatStore creates an empty in-memory chat store.
func NewChatStore() *ChatStore {
	return &ChatStore{
		sessions: make(map[int64]*domain.ChatSession),
		nextSess: 1,
		nextMsg:  1,
	}
}

// CreateSession opens a new session with an empty title.
func (s *ChatStore) CreateSession(_ context.Context) (*domain.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	sess := &domain.ChatSession{ID: s.nextSess, CreatedAt: now, UpdatedAt: now}
	s.sessions[sess.ID] = sess
	s.nextSess++

	copied := *sess
	return &copied, nil
}

// GetSession retrieves a session by id.
func (s *ChatStore) GetSession(_ context.Context, id int64) (*domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *sess
	return &copied, nil
}

// ListSessions returns all sessions, newest first.
func (s *ChatStore) ListSessions(_ context.Context) ([]domain.ChatSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]domain.ChatSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, *sess)
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].UpdatedAt.Equal(sessions[j].UpdatedAt) {
			return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
		}
		return sessions[i].ID > sessions[j].ID
	})
	return sessions, nil
}

// SaveMessage appends a message to its session. The first user message
// of an untitled session also sets the session title.
func (s *ChatStore) SaveMessage(_ context.Context, msg *domain.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[msg.SessionID]
	if !ok {
		return domain.ErrNotFound
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}
	if msg.ID == 0 {
		msg.ID = s.nextMsg
		s.nextMsg++
	}
	s.messages = append(s.messages, *msg)

	if msg.Role == domain.RoleUser && sess.Title == "" {
		sess.Title = domain.TitleFromMessage(msg.Content)
	}
	sess.UpdatedAt = msg.CreatedAt
	return nil
}

// History returns the last limit messages of a session, oldest first.
func (s *ChatStore) History(_ context.Context, sessionID int64, limit int) ([]domain.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var msgs []domain.ChatMessage
	for _, msg := range s.messages {
		if msg.SessionID == sessionID {
			msgs = append(msgs, msg)
		}
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

// DeleteMessagesBefore removes messages created before cutoff.
func (s *ChatStore) DeleteMessagesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var kept []domain.ChatMessage
	var deleted int64
	for _, msg := range s.messages {
		if msg.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, msg)
	}
	s.messages = kept
	return deleted, nil
}

// DeleteEmptySessions removes sessions with no remaining messages.
func (s *ChatStore) DeleteEmptySessions(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	populated := make(map[int64]bool)
	for _, msg := range s.messages {
		populated[msg.SessionID] = true
	}

	var deleted int64
	for id := range s.sessions {
		if !populated[id] {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close releases resources.
func (s *ChatStore) Close() error {
	return nil
}
