package cli

import (
	"bufio"
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var resetForce bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the knowledge base",
	Long: `Reset deletes every indexed chunk and persists the empty state.
Chat sessions are not touched. Prompts for confirmation unless --force
is given.`,
	RunE: runReset,
}

func init() {
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if knowledgeIndex == nil {
		return errors.New("knowledge index not configured")
	}

	if !resetForce {
		cmd.Printf("This deletes all %d indexed chunks. Continue? [y/N] ", knowledgeIndex.Count())
		reader := bufio.NewReader(cmd.InOrStdin())
		answer, _ := reader.ReadString('\n')
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			cmd.Println("aborted")
			return nil
		}
	}

	if err := knowledgeIndex.Reset(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("knowledge base cleared")
	return nil
}
