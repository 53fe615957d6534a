package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsift/docsift/internal/core/domain"
)

var (
	queryLimit    int
	queryInitialK int
	queryBudget   int
	queryJSON     bool
	queryChunks   bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Query ingested documents",
	Long: `Runs the full retrieval pipeline over ingested documents.
Combines keyword (BM25) and semantic (vector) search, reranks the fused
candidates, and assembles a token-budgeted context block with citations.

Inline filters are extracted from the query text, for example:
  docsift query "ticker: AAPL revenue guidance"
  docsift query "capex plans between 2023-01-01 and 2023-12-31"
  docsift query "revenue AND margins NOT preliminary"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 0,
		"maximum number of ranked results (0 = configured default)")
	queryCmd.Flags().IntVar(&queryInitialK, "initial-k", 0,
		"candidates requested per index before fusion (0 = configured default)")
	queryCmd.Flags().IntVar(&queryBudget, "budget", 0,
		"token budget for the assembled context (0 = configured default)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the response as JSON")
	queryCmd.Flags().BoolVar(&queryChunks, "chunks", false, "print ranked chunks instead of assembled context")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errors.New("query service not configured")
	}

	ctx := context.Background()
	opts := domain.QueryOptions{
		InitialK:    queryInitialK,
		FinalK:      queryLimit,
		TokenBudget: queryBudget,
	}

	resp, err := queryService.Query(ctx, args[0], opts)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, resp)
	}
	if queryChunks {
		return outputQueryChunks(cmd, resp)
	}
	return outputQueryContext(cmd, resp)
}

func outputQueryJSON(cmd *cobra.Command, resp *domain.QueryResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryContext(cmd *cobra.Command, resp *domain.QueryResponse) error {
	if resp.Context == "" {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println(resp.Context)

	if len(resp.Citations) > 0 {
		cmd.Println()
		cmd.Println("Citations:")
		for _, c := range resp.Citations {
			line := "  " + c.SourceID
			if c.Title != "" {
				line += " | " + c.Title
			}
			if c.Date != "" {
				line += " | " + c.Date
			}
			cmd.Println(line)
		}
	}

	printDegraded(cmd, resp.Degraded)
	return nil
}

func outputQueryChunks(cmd *cobra.Command, resp *domain.QueryResponse) error {
	if len(resp.Results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, sc := range resp.Results {
		title := chunkTitle(sc.Chunk)
		cmd.Printf("  [%d] %s (%.4f)\n", i+1, sc.Chunk.ID, sc.Score)
		if title != "" {
			cmd.Printf("      %s\n", title)
		}
		cmd.Printf("      %s\n", snippet(sc.Chunk.Content, 120))
		cmd.Println()
	}

	printDegraded(cmd, resp.Degraded)
	return nil
}

func printDegraded(cmd *cobra.Command, degraded []string) {
	for _, d := range degraded {
		cmd.PrintErrf("warning: %s unavailable, results degraded\n", d)
	}
}

func chunkTitle(chunk domain.Chunk) string {
	if t, ok := chunk.Metadata["title"].(string); ok {
		return t
	}
	return ""
}

// snippet truncates content to at most n bytes on a rune boundary.
func snippet(content string, n int) string {
	if len(content) <= n {
		return content
	}
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "..."
}
