// Package tui provides the interactive chat interface built on Bubble
// Tea. It drives the ChatService one query at a time and keeps a
// transcript of the conversation in a scrollable viewport.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	metaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	inputBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	chatBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// turn is one rendered exchange line in the transcript.
type turn struct {
	role string
	text string
	meta string
}

// answerMsg carries the pipeline result back into the update loop.
type answerMsg struct {
	result domain.QueryResult
}

// Model is the Bubble Tea model for the chat view.
type Model struct {
	svc       driving.ChatService
	chats     driven.ChatStore
	sessionID *int64

	input    textinput.Model
	viewport viewport.Model
	turns    []turn
	status   string
	thinking bool
	ready    bool
}

// New creates a chat model. chats may be nil; the conversation is then
// not persisted and runs without history.
func New(svc driving.ChatService, chats driven.ChatStore) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask something and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)

	m := Model{
		svc:      svc,
		chats:    chats,
		input:    ti,
		viewport: vp,
		status:   "Ready. Esc or Ctrl+C to quit.",
	}

	if chats != nil {
		if sess, err := chats.CreateSession(context.Background()); err == nil {
			m.sessionID = &sess.ID
		}
	}
	return m
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, ch := chatBoxStyle.GetFrameSize()
		_, ih := inputBoxStyle.GetFrameSize()
		reserved := 1 + 1 + ih + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved - ch
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width-2)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case answerMsg:
		m.thinking = false
		m.turns = append(m.turns, turn{
			role: domain.RoleAssistant,
			text: msg.result.Response,
			meta: fmt.Sprintf("%.3fs, %d documents", msg.result.Latency, msg.result.DocumentsCount),
		})
		m.status = "Ready."
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			query := strings.TrimSpace(m.input.Value())
			if query == "" || m.thinking {
				return m, nil
			}
			m.input.SetValue("")
			m.turns = append(m.turns, turn{role: domain.RoleUser, text: query})
			m.thinking = true
			m.status = "Thinking..."
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, m.ask(query)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("ragchat")
	transcript := chatBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := metaStyle.Render(m.status)
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

// ask runs the query off the update loop and persists both turns.
func (m Model) ask(query string) tea.Cmd {
	svc, chats, sessionID := m.svc, m.chats, m.sessionID
	return func() tea.Msg {
		ctx := context.Background()

		result := svc.ProcessQuery(ctx, query, sessionID)

		if chats != nil && sessionID != nil {
			_ = chats.SaveMessage(ctx, &domain.ChatMessage{
				SessionID: *sessionID, Role: domain.RoleUser, Content: query,
			})
			_ = chats.SaveMessage(ctx, &domain.ChatMessage{
				SessionID: *sessionID, Role: domain.RoleAssistant, Content: result.Response,
			})
		}
		return answerMsg{result: result}
	}
}

func (m Model) renderTranscript() string {
	if len(m.turns) == 0 {
		return "No messages yet. Ask about anything in the knowledge base."
	}
	var sb strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		switch t.role {
		case domain.RoleUser:
			sb.WriteString(userStyle.Render("You: ") + t.text)
		default:
			sb.WriteString(assistantStyle.Render("Assistant: ") + t.text)
			if t.meta != "" {
				sb.WriteString("\n" + metaStyle.Render(t.meta))
			}
		}
	}
	return sb.String()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
