package mcp

import (
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the MCP
// server. This provides a single injection point.
type Ports struct {
	// Chat answers queries and exposes raw retrieval.
	Chat driving.ChatService

	// Ingest adds documents to the knowledge base. Optional.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	// Ingest is optional; the ingest tool is skipped without it
	return nil
}
