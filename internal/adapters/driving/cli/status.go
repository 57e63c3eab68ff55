package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

// persistedVerifier is implemented by indexes that can check their
// on-disk state for corruption.
type persistedVerifier interface {
	VerifyPersisted() error
}

type statusReport struct {
	Chunks     int    `json:"chunks"`
	Embedder   string `json:"embedder"`
	ConfigPath string `json:"config_path,omitempty"`
	IndexState string `json:"index_state"`
	Sessions   int    `json:"sessions"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show knowledge base and configuration status",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if knowledgeIndex == nil {
		return errors.New("knowledge index not configured")
	}

	report := statusReport{
		Chunks:     knowledgeIndex.Count(),
		Embedder:   embedderName,
		IndexState: "ok",
	}

	if verifier, ok := knowledgeIndex.(persistedVerifier); ok {
		if err := verifier.VerifyPersisted(); err != nil {
			report.IndexState = fmt.Sprintf("degraded: %v", err)
		}
	}

	if configStore != nil {
		report.ConfigPath = configStore.Path()
	}
	if chatStore != nil {
		if sessions, err := chatStore.ListSessions(cmd.Context()); err == nil {
			report.Sessions = len(sessions)
		}
	}

	if statusJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Chunks:    %d\n", report.Chunks)
	cmd.Printf("Embedder:  %s\n", report.Embedder)
	cmd.Printf("Index:     %s\n", report.IndexState)
	cmd.Printf("Sessions:  %d\n", report.Sessions)
	if report.ConfigPath != "" {
		cmd.Printf("Config:    %s\n", report.ConfigPath)
	}
	return nil
}
