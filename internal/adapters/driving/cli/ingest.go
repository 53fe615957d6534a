package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/normalisers"
)

var (
	ingestSourceID string
	ingestTitle    string
	ingestTicker   string
	ingestDocType  string
	ingestFormType string
	ingestDate     string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a document into the indexes",
	Long: `Reads a file, chunks it, embeds the chunks when an embedding
provider is configured, and writes them to the keyword and vector indexes.

Re-ingesting the same source ID supersedes the previous version; queries
never observe a partial mix of old and new chunks.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestSourceID, "source-id", "", "stable source identifier (defaults to the file path)")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title (defaults to the file name)")
	ingestCmd.Flags().StringVar(&ingestTicker, "ticker", "", "ticker symbol metadata")
	ingestCmd.Flags().StringVar(&ingestDocType, "doc-type", "", "document type metadata")
	ingestCmd.Flags().StringVar(&ingestFormType, "form-type", "", "form type metadata")
	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "published date metadata (YYYY-MM-DD)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	extractedTitle, text, err := normalisers.ForPath(path).Normalise(content)
	if err != nil {
		return fmt.Errorf("failed to normalise file: %w", err)
	}

	sourceID := ingestSourceID
	if sourceID == "" {
		sourceID = path
	}
	title := ingestTitle
	if title == "" {
		title = extractedTitle
	}
	if title == "" {
		title = filepath.Base(path)
	}

	metadata := map[string]any{}
	if ingestTicker != "" {
		metadata["ticker"] = ingestTicker
	}
	if ingestDocType != "" {
		metadata["doc_type"] = ingestDocType
	}
	if ingestFormType != "" {
		metadata["form_type"] = ingestFormType
	}
	if ingestDate != "" {
		metadata["published_date"] = ingestDate
	}

	doc := &domain.Document{
		SourceID: sourceID,
		Title:    title,
		Content:  text,
		Metadata: metadata,
	}

	result, err := ingestService.Ingest(context.Background(), doc)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %s (version %d)\n", result.SourceID, result.Version)
	cmd.Printf("  Chunks written: %d\n", result.Chunks)
	if result.Retired > 0 {
		cmd.Printf("  Chunks retired: %d\n", result.Retired)
	}
	return nil
}
