// Package cli implements the docsift command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/docsift/docsift/internal/core/domain"
	"github.com/docsift/docsift/internal/core/ports/driven"
	"github.com/docsift/docsift/internal/core/ports/driving"
	"github.com/docsift/docsift/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services injected by main before Execute.
var (
	ingestService driving.IngestService
	queryService  driving.QueryService
	configStore   driven.ConfigStore
	settings      domain.Settings
)

var verboseFlag bool

var rootCmd = &cobra.Command{
	Use:   "docsift",
	Short: "Hybrid retrieval over ingested documents",
	Long: `Docsift ingests documents, indexes them for keyword (BM25) and
semantic (vector) search, and answers queries with reranked,
token-budgeted context ready to paste into an LLM prompt.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verboseFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"print pipeline debug output to stderr")
}

// Services bundles everything the commands need.
type Services struct {
	Ingest   driving.IngestService
	Query    driving.QueryService
	Config   driven.ConfigStore
	Settings domain.Settings
}

// SetServices wires the core services into the CLI commands.
func SetServices(s Services) {
	ingestService = s.Ingest
	queryService = s.Query
	configStore = s.Config
	settings = s.Settings
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
