package domain

import "time"

// Message roles. The generation adapter maps RoleAssistant to its
// provider-specific name; anything unrecognised collapses to RoleUser.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// sessionTitleLimit is the maximum length of an auto-generated session
// title before truncation.
const sessionTitleLimit = 50

// ChatSession groups the messages of one conversation.
type ChatSession struct {
	// ID is the session identifier assigned by the store.
	ID int64 `json:"id"`

	// Title is auto-generated from the first user message.
	Title string `json:"title"`

	// CreatedAt is when the session was opened.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the session last received a message.
	UpdatedAt time.Time `json:"updated_at"`
}

// ChatMessage is a single turn in a session.
type ChatMessage struct {
	// ID is the message identifier assigned by the store.
	ID int64 `json:"id"`

	// SessionID links to the owning ChatSession.
	SessionID int64 `json:"session_id"`

	// Role is one of RoleUser, RoleAssistant, RoleSystem.
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// CreatedAt orders messages within a session.
	CreatedAt time.Time `json:"created_at"`
}

// TitleFromMessage derives a session title from the first user message:
// the first 50 characters, with an ellipsis when truncated.
func TitleFromMessage(content string) string {
	if len(content) > sessionTitleLimit {
		return content[:sessionTitleLimit] + "..."
	}
	return content
}
