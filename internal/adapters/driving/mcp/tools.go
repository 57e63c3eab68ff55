package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the query to search the knowledge base with"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 3)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single retrieved chunk.
type SearchResultOutput struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	DocType  string  `json:"doc_type,omitempty"`
	Category string  `json:"category,omitempty"`
	Content  string  `json:"content"`
	Score    float64 `json:"score"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query     string `json:"query" jsonschema:"the question to answer from the knowledge base"`
	SessionID int64  `json:"session_id,omitempty" jsonschema:"chat session id for conversation history (0 for stateless)"`
}

// AskOutput is the output schema for the ask tool; it mirrors the
// query result shape.
type AskOutput struct {
	Response       string  `json:"response"`
	DocumentsCount int     `json:"documents_count"`
	Latency        float64 `json:"latency"`
	Success        bool    `json:"success"`
}

// IngestInput is the input schema for the ingest tool.
type IngestInput struct {
	DocumentID string `json:"document_id,omitempty" jsonschema:"stable document id (random when omitted)"`
	Title      string `json:"title,omitempty" jsonschema:"document title"`
	Content    string `json:"content" jsonschema:"raw document text to index"`
	DocType    string `json:"doc_type,omitempty" jsonschema:"document type label"`
	Category   string `json:"category,omitempty" jsonschema:"document category label"`
}

// IngestOutput is the output schema for the ingest tool.
type IngestOutput struct {
	Ingested bool `json:"ingested"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the knowledge base and return scored chunks",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using knowledge base retrieval and generation",
	}, s.handleAsk)

	if s.ports.Ingest != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ingest",
			Description: "Add a document to the knowledge base",
		}, s.handleIngest)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results := s.ports.Chat.Search(ctx, input.Query, input.TopK)

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			ID:       results[i].ID,
			Title:    results[i].Title,
			DocType:  results[i].DocType,
			Category: results[i].Category,
			Content:  results[i].Content,
			Score:    results[i].Score,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	var sessionID *int64
	if input.SessionID > 0 {
		sessionID = &input.SessionID
	}

	result := s.ports.Chat.ProcessQuery(ctx, input.Query, sessionID)

	return nil, AskOutput{
		Response:       result.Response,
		DocumentsCount: result.DocumentsCount,
		Latency:        result.Latency,
		Success:        result.Success,
	}, nil
}

// handleIngest handles the ingest tool invocation.
func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	ok := s.ports.Ingest.IngestDocument(ctx, domain.IngestInput{
		DocumentID: input.DocumentID,
		Title:      input.Title,
		Content:    input.Content,
		DocType:    input.DocType,
		Category:   input.Category,
		Source:     domain.SourceManual,
	})
	return nil, IngestOutput{Ingested: ok}, nil
}
