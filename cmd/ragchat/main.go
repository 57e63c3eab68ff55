// Command ragchat is the entry point. It wires configuration, the
// embedding and generation adapters, the flat vector index, the SQLite
// chat store and the core services, then hands control to the CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/config/file"
	geminiembed "github.com/custodia-labs/ragchat-cli/internal/adapters/driven/embedding/gemini"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/embedding/hashing"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/index/flat"
	geminillm "github.com/custodia-labs/ragchat-cli/internal/adapters/driven/llm/gemini"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragchat-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ragchat-cli/internal/core/services"
	"github.com/custodia-labs/ragchat-cli/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("failed to open config: %w", err)
	}
	settings := file.LoadSettings(configStore)

	embedder := buildEmbedder(settings)

	index, err := flat.New(embedder, settings.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}
	if err := index.EnsureInitialized(ctx); err != nil {
		return fmt.Errorf("failed to initialize index: %w", err)
	}

	chatStore, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open chat store: %w", err)
	}
	defer chatStore.Close()

	generator := buildGenerator(settings)

	ingestSvc := services.NewIngestService(index, settings.ChunkWindow)
	querySvc := services.NewQueryService(index, generator, chatStore, ingestSvc, services.QueryServiceConfig{
		TopK:         settings.TopK,
		HistoryLimit: settings.HistoryLimit,
	})
	retentionSvc := services.NewRetentionService(chatStore, settings.RetentionDays)

	scheduler := services.NewScheduler(retentionSvc, settings.CheckInterval)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	cli.SetChatService(querySvc)
	cli.SetIngestService(ingestSvc)
	cli.SetMaintenanceService(retentionSvc)
	cli.SetChatStore(chatStore)
	cli.SetConfigStore(configStore)
	cli.SetKnowledgeIndex(index)
	cli.SetEmbedderName(embedder.ModelName())

	return cli.Execute()
}

// buildEmbedder selects the embedding adapter. The local hashing
// embedder is the default so retrieval works offline; Gemini embeddings
// are opt-in via embedder.provider.
func buildEmbedder(settings file.Settings) driven.Embedder {
	if settings.Embedder == "gemini" && settings.GeminiAPIKey != "" {
		return geminiembed.New(geminiembed.Config{
			APIKey:     settings.GeminiAPIKey,
			Dimensions: settings.EmbedderDims,
		})
	}
	return hashing.New(hashing.Config{Dimensions: settings.EmbedderDims})
}

// buildGenerator wires the Gemini LLM behind the retry layer. Without
// an API key the generator runs unconfigured and answers with its
// not-configured fallback.
func buildGenerator(settings file.Settings) *services.Generator {
	cfg := services.GeneratorConfig{
		Temperature:     settings.Temperature,
		MaxOutputTokens: settings.MaxOutputTokens,
	}

	if settings.GeminiAPIKey == "" {
		logger.Debug("no Gemini API key, generation disabled")
		return services.NewGenerator(nil, cfg)
	}

	llm, err := geminillm.New(geminillm.Config{
		APIKey: settings.GeminiAPIKey,
		Model:  settings.GeminiModel,
	})
	if err != nil {
		logger.Warn("failed to configure Gemini: %v", err)
		return services.NewGenerator(nil, cfg)
	}
	return services.NewGenerator(llm, cfg)
}
