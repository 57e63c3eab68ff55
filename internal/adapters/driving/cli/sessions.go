package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/core/domain"
)

var (
	sessionsJSON      bool
	sessionsShowLimit int
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List chat sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show the messages of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete messages older than the retention window",
	RunE:  runSessionsCleanup,
}

func init() {
	sessionsCmd.Flags().BoolVar(&sessionsJSON, "json", false, "output sessions as JSON")
	sessionsShowCmd.Flags().IntVarP(&sessionsShowLimit, "limit", "l", 50, "maximum messages to show")
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsCleanupCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsList(cmd *cobra.Command, _ []string) error {
	if chatStore == nil {
		return errors.New("chat store not configured")
	}

	sessions, err := chatStore.ListSessions(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if sessionsJSON {
		data, err := json.MarshalIndent(sessions, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal sessions: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(sessions) == 0 {
		cmd.Println("No sessions.")
		return nil
	}
	for _, s := range sessions {
		title := s.Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("%d  %s  %s\n", s.ID, s.UpdatedAt.Format("2006-01-02 15:04"), title)
	}
	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	if chatStore == nil {
		return errors.New("chat store not configured")
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid session id %q", args[0])
	}

	if _, err := chatStore.GetSession(cmd.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("session %d not found", id)
		}
		return err
	}

	messages, err := chatStore.History(cmd.Context(), id, sessionsShowLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	for _, m := range messages {
		cmd.Printf("[%s] %s\n", m.Role, m.Content)
	}
	return nil
}

func runSessionsCleanup(cmd *cobra.Command, _ []string) error {
	if maintenanceService == nil {
		return errors.New("maintenance service not configured")
	}

	messages, sessions, err := maintenanceService.CleanupChats(cmd.Context())
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}
	cmd.Printf("deleted %d messages, %d empty sessions\n", messages, sessions)
	return nil
}
