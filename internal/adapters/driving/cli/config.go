package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsift/docsift/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active configuration",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	r := settings.Retrieval
	cmd.Println("[Retrieval]")
	cmd.Printf("  Window size:     %d\n", r.WindowSize)
	cmd.Printf("  Overlap:         %d\n", r.Overlap)
	cmd.Printf("  Initial K:       %d\n", r.InitialK)
	cmd.Printf("  Final K:         %d\n", r.FinalK)
	cmd.Printf("  Token budget:    %d\n", r.TokenBudget)
	cmd.Printf("  Rerank workers:  %d\n", r.RerankWorkers)
	cmd.Printf("  Collab timeout:  %s\n", r.CollaboratorTimeout)
	cmd.Println()

	cmd.Println("[Embedding]")
	printProviderSettings(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	if settings.Embedding.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	}
	cmd.Println()

	cmd.Println("[Reranker]")
	printProviderSettings(cmd, settings.Reranker.Provider, settings.Reranker.Model,
		settings.Reranker.BaseURL, settings.Reranker.APIKey, settings.Reranker.IsConfigured())
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Data dir:     %s\n", settings.Storage.DataDir)
	if settings.Storage.PostgresURL != "" {
		cmd.Printf("  Postgres URL: %s\n", settings.Storage.PostgresURL)
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Addr: %s\n", settings.Server.Addr)
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProviderSettings(cmd *cobra.Command, provider domain.AIProvider,
	model, baseURL, apiKey string, configured bool) {
	if provider == "" {
		cmd.Println("  Provider: (not set)")
		return
	}
	cmd.Printf("  Provider: %s\n", provider)
	cmd.Printf("  Model:    %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if apiKey != "" {
		cmd.Printf("  API Key:  %s\n", maskAPIKey(apiKey))
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status:   %s\n", status)
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not configured")
	}
	cmd.Println(configStore.Path())
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return fmt.Sprintf("%s...%s", key[:4], key[len(key)-4:])
}
