package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/config/file"
)

func setupConfigStore(t *testing.T) *file.ConfigStore {
	t.Helper()
	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	oldStore := configStore
	configStore = store
	t.Cleanup(func() { configStore = oldStore })
	return store
}

func TestConfigCmd_ShowListsKnownKeys(t *testing.T) {
	store := setupConfigStore(t)
	require.NoError(t, store.Set(file.KeyTopK, 5))
	require.NoError(t, store.Set(file.KeyGeminiAPIKey, "sk-abcdef0123456789"))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "retrieval.top_k = 5")
	// Secrets are masked.
	assert.Contains(t, buf.String(), "sk-a...6789")
	assert.NotContains(t, buf.String(), "sk-abcdef0123456789")
}

func TestConfigCmd_GetAndSet(t *testing.T) {
	setupConfigStore(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"config", "set", "retrieval.top_k", "7"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()
	require.NoError(t, rootCmd.Execute())

	buf.Reset()
	rootCmd.SetArgs([]string{"config", "get", "retrieval.top_k"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "7")
}

func TestConfigCmd_GetMissingKey(t *testing.T) {
	setupConfigStore(t)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"config", "get", "no.such.key"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not set")
}

func TestConfigCmd_StoreNotConfigured(t *testing.T) {
	oldStore := configStore
	configStore = nil
	defer func() {
		configStore = oldStore
	}()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"config", "get", "retrieval.top_k"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "config store not configured")
}

func TestCoerceValue(t *testing.T) {
	assert.Equal(t, true, coerceValue("true"))
	assert.Equal(t, 42, coerceValue("42"))
	assert.Equal(t, 0.7, coerceValue("0.7"))
	assert.Equal(t, "gemini", coerceValue("gemini"))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}
