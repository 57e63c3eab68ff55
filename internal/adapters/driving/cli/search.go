package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the knowledge base without generating an answer",
	Long: `Search embeds the query and prints the closest chunks with their
similarity scores. Useful for inspecting what retrieval would feed the
language model.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "maximum number of results (0 = default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	query := strings.Join(args, " ")
	results := chatService.Search(cmd.Context(), query, searchLimit)

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

func outputSearchJSON(cmd *cobra.Command, results []domain.ScoredChunk) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.ScoredChunk) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	for i, r := range results {
		title := r.Chunk.Title
		if title == "" {
			title = r.Chunk.ID
		}
		cmd.Printf("%d. %s (score: %.4f)\n", i+1, title, r.Score)
		if r.Chunk.DocType != "" || r.Chunk.Category != "" {
			cmd.Printf("   %s %s\n", r.Chunk.DocType, r.Chunk.Category)
		}
		cmd.Printf("   %s\n", previewContent(r.Chunk.Content))
	}
	return nil
}

// previewContent flattens a chunk to a single trimmed line for table
// output.
func previewContent(content string) string {
	flat := strings.Join(strings.Fields(content), " ")
	if len(flat) > 120 {
		return flat[:120] + "..."
	}
	return flat
}
