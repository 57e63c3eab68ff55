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
	askSession int64
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [query]",
	Short: "Ask a single question against the knowledge base",
	Long: `Ask runs one retrieval-augmented query and prints the answer.

With --session, the conversation history of that session is included in
the prompt and the new turns are saved to it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Int64Var(&askSession, "session", 0, "chat session id to continue")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full result as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	query := strings.Join(args, " ")

	var sessionID *int64
	if askSession > 0 {
		sessionID = &askSession
	}

	result := chatService.ProcessQuery(cmd.Context(), query, sessionID)

	if sessionID != nil && chatStore != nil && result.Success {
		saveTurns(cmd, *sessionID, query, result.Response)
	}

	if askJSON {
		return outputAskJSON(cmd, result)
	}
	return outputAskText(cmd, result)
}

// saveTurns persists the user and assistant messages of one exchange.
// Persistence failures are reported but do not fail the command; the
// answer was already produced.
func saveTurns(cmd *cobra.Command, sessionID int64, query, response string) {
	ctx := cmd.Context()
	turns := []domain.ChatMessage{
		{SessionID: sessionID, Role: domain.RoleUser, Content: query},
		{SessionID: sessionID, Role: domain.RoleAssistant, Content: response},
	}
	for i := range turns {
		if err := chatStore.SaveMessage(ctx, &turns[i]); err != nil {
			cmd.PrintErrf("warning: failed to save message: %v\n", err)
			return
		}
	}
}

func outputAskJSON(cmd *cobra.Command, result domain.QueryResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAskText(cmd *cobra.Command, result domain.QueryResult) error {
	cmd.Println(result.Response)
	if verbose {
		cmd.Printf("\n(%d documents, %.3fs)\n", result.DocumentsCount, result.Latency)
	}
	return nil
}
