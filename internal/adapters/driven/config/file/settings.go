package file

import (
	"os"
	"time"

	"github.com/custodia-labs/ragchat-cli/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyGeminiAPIKey    = "gemini.api_key"
	KeyGeminiModel     = "gemini.model"
	KeyTemperature     = "gemini.temperature"
	KeyMaxOutputTokens = "gemini.max_output_tokens"
	KeyEmbedder        = "embedder.provider"
	KeyEmbedderDims    = "embedder.dimensions"
	KeyDataDir         = "storage.data_dir"
	KeyTopK            = "retrieval.top_k"
	KeyChunkWindow     = "ingest.chunk_window"
	KeyRetentionDays   = "chat.retention_days"
	KeyHistoryLimit    = "chat.history_limit"
	KeyCheckInterval   = "chat.check_interval_minutes"
)

// Settings is a typed snapshot of the configuration, consumed once at
// wiring time. Zero values mean "use the component default".
type Settings struct {
	GeminiAPIKey string
	GeminiModel  string

	// Temperature is nil when unset so an explicit 0.0 survives the
	// trip through the config file.
	Temperature     *float64
	MaxOutputTokens int

	// Embedder selects the embedding adapter: "hashing" (default,
	// local) or "gemini".
	Embedder     string
	EmbedderDims int

	DataDir       string
	TopK          int
	ChunkWindow   int
	RetentionDays int
	HistoryLimit  int
	CheckInterval time.Duration
}

// LoadSettings reads the snapshot from a config store. The API key
// falls back to the GEMINI_API_KEY environment variable so the config
// file never has to hold it.
func LoadSettings(store driven.ConfigStore) Settings {
	apiKey := store.GetString(KeyGeminiAPIKey)
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}

	var interval time.Duration
	if minutes := store.GetInt(KeyCheckInterval); minutes > 0 {
		interval = time.Duration(minutes) * time.Minute
	}

	var temperature *float64
	if _, ok := store.Get(KeyTemperature); ok {
		value := store.GetFloat(KeyTemperature)
		temperature = &value
	}

	return Settings{
		GeminiAPIKey:    apiKey,
		GeminiModel:     store.GetString(KeyGeminiModel),
		Temperature:     temperature,
		MaxOutputTokens: store.GetInt(KeyMaxOutputTokens),
		Embedder:        store.GetString(KeyEmbedder),
		EmbedderDims:    store.GetInt(KeyEmbedderDims),
		DataDir:         store.GetString(KeyDataDir),
		TopK:            store.GetInt(KeyTopK),
		ChunkWindow:     store.GetInt(KeyChunkWindow),
		RetentionDays:   store.GetInt(KeyRetentionDays),
		HistoryLimit:    store.GetInt(KeyHistoryLimit),
		CheckInterval:   interval,
	}
}
