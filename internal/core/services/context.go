package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

// NoContextSentinel is returned when retrieval produced nothing. The
// generator still runs with it, so the model can answer honestly that
// the knowledge base has no relevant material.
const NoContextSentinel = "No relevant documents found in the knowledge base."

const contextInstructions = "Instructions: Use only the provided context. " +
	"If the answer is not in the context, say you don't know."

// BuildContext renders retrieved chunks into the prompt context block.
// Results are rendered in the order given; ranking belongs to the
// retriever. Blank Type and Category lines are omitted per document.
func BuildContext(results []domain.ScoredChunk) string {
	if len(results) == 0 {
		return NoContextSentinel
	}

	parts := []string{"Knowledge Base Context:"}
	for i, result := range results {
		title := result.Title
		if title == "" {
			title = "No title"
		}
		parts = append(parts, fmt.Sprintf("\nDocument %d: %s", i+1, title))
		if result.DocType != "" {
			parts = append(parts, "Type: "+result.DocType)
		}
		if result.Category != "" {
			parts = append(parts, "Category: "+result.Category)
		}
		parts = append(parts, "Content: "+result.Content)
	}
	parts = append(parts, "\n"+contextInstructions)

	return strings.Join(parts, "\n")
}
