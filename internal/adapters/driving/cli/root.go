// Package cli provides the cobra command-line interface for ragchat.
// Services are injected from main through the Set* functions before
// Execute runs.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Injected services. nil until main wires them.
var (
	chatService        driving.ChatService
	ingestService      driving.IngestService
	maintenanceService driving.MaintenanceService
	chatStore          driven.ChatStore
	configStore        driven.ConfigStore
	knowledgeIndex     driven.KnowledgeIndex
	embedderName       string
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ragchat",
	Short: "Retrieval-augmented chat over a local knowledge base",
	Long: `ragchat answers questions from a local knowledge base.

Documents are chunked, embedded and stored in a flat vector index;
queries retrieve the closest chunks and feed them to a language model
together with recent conversation history.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetChatService injects the query orchestrator.
func SetChatService(svc driving.ChatService) { chatService = svc }

// SetIngestService injects the ingest service.
func SetIngestService(svc driving.IngestService) { ingestService = svc }

// SetMaintenanceService injects the retention service.
func SetMaintenanceService(svc driving.MaintenanceService) { maintenanceService = svc }

// SetChatStore injects the session store.
func SetChatStore(store driven.ChatStore) { chatStore = store }

// SetConfigStore injects the configuration store.
func SetConfigStore(store driven.ConfigStore) { configStore = store }

// SetKnowledgeIndex injects the vector index for status and reset.
func SetKnowledgeIndex(index driven.KnowledgeIndex) { knowledgeIndex = index }

// SetEmbedderName records the active embedding model for status output.
func SetEmbedderName(name string) { embedderName = name }

// SetVersion overrides the build version string.
func SetVersion(v string) { version = v }
