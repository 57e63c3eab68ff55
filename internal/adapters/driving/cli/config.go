package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ragchat-cli/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change configuration values. Keys use dotted TOML paths,
for example:

  gemini.model
  embedder.provider
  retrieval.top_k
  chat.retention_days`,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Set the Gemini API key",
	Long:  `Prompts for the API key without echoing it to the terminal.`,
	RunE:  runConfigSetKey,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Printf("Config file: %s\n\n", configStore.Path())
	for _, key := range []string{
		file.KeyGeminiModel,
		file.KeyTemperature,
		file.KeyMaxOutputTokens,
		file.KeyEmbedder,
		file.KeyEmbedderDims,
		file.KeyDataDir,
		file.KeyTopK,
		file.KeyChunkWindow,
		file.KeyRetentionDays,
		file.KeyHistoryLimit,
		file.KeyCheckInterval,
	} {
		if value, ok := configStore.Get(key); ok {
			cmd.Printf("%s = %v\n", key, value)
		}
	}
	if apiKey := configStore.GetString(file.KeyGeminiAPIKey); apiKey != "" {
		cmd.Printf("%s = %s\n", file.KeyGeminiAPIKey, maskAPIKey(apiKey))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("key %q not set", args[0])
	}
	if args[0] == file.KeyGeminiAPIKey {
		value = maskAPIKey(fmt.Sprint(value))
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, coerceValue(raw)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	cmd.Printf("%s updated\n", key)
	return nil
}

func runConfigSetKey(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Print("Gemini API key: ")
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return errors.New("no key entered")
	}

	if err := configStore.Set(file.KeyGeminiAPIKey, apiKey); err != nil {
		return fmt.Errorf("failed to save key: %w", err)
	}
	cmd.Println("API key saved")
	return nil
}

// coerceValue parses the raw string into bool, int or float where it
// cleanly converts, so TOML values keep their natural types.
func coerceValue(raw string) any {
	if parsed, err := strconv.ParseBool(raw); err == nil {
		return parsed
	}
	if parsed, err := strconv.Atoi(raw); err == nil {
		return parsed
	}
	if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
		return parsed
	}
	return raw
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
