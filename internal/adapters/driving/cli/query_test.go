package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsift/docsift/internal/core/domain"
)

func TestQueryCmd_Use(t *testing.T) {
	assert.Equal(t, "query [text]", queryCmd.Use)
}

func TestQueryCmd_Long(t *testing.T) {
	assert.Contains(t, queryCmd.Long, "BM25")
	assert.Contains(t, queryCmd.Long, "semantic")
	assert.Contains(t, queryCmd.Long, "citations")
}

func TestQueryCmd_RequiresExactlyOneArg(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query"})

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestQueryCmd_HasFlags(t *testing.T) {
	limit := queryCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "n", limit.Shorthand)
	assert.Equal(t, "0", limit.DefValue)

	assert.NotNil(t, queryCmd.Flags().Lookup("initial-k"))
	assert.NotNil(t, queryCmd.Flags().Lookup("budget"))
	assert.NotNil(t, queryCmd.Flags().Lookup("json"))
	assert.NotNil(t, queryCmd.Flags().Lookup("chunks"))
}

func TestQueryCmd_PrintsContextAndCitations(t *testing.T) {
	_, query, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query", "revenue growth"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "quarterly revenue grew")
	assert.Contains(t, buf.String(), "Citations:")
	assert.Contains(t, buf.String(), "src-1 | Q3 Report | 2024-07-15")
	require.Len(t, query.queries, 1)
	assert.Equal(t, "revenue growth", query.queries[0])
}

func TestQueryCmd_ForwardsOptionFlags(t *testing.T) {
	_, query, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "-n", "5", "--initial-k", "40", "--budget", "2000", "revenue"})
	defer func() {
		queryLimit, queryInitialK, queryBudget = 0, 0, 0
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	require.Len(t, query.opts, 1)
	assert.Equal(t, 5, query.opts[0].FinalK)
	assert.Equal(t, 40, query.opts[0].InitialK)
	assert.Equal(t, 2000, query.opts[0].TokenBudget)
}

func TestQueryCmd_JSONOutput(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "--json", "revenue"})
	defer func() {
		queryJSON = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\"Context\"")
	assert.Contains(t, buf.String(), "\"Citations\"")
}

func TestQueryCmd_ChunksOutput(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "--chunks", "revenue"})
	defer func() {
		queryChunks = false
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Results:")
	assert.Contains(t, buf.String(), "src-1:0")
}

func TestQueryCmd_DegradedWarningOnStderr(t *testing.T) {
	_, query, cleanup := setupTestServices()
	defer cleanup()

	query.resp = &domain.QueryResponse{
		Context:  "[source: src-1]\nsome text",
		Degraded: []string{"vector"},
	}

	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs([]string{"query", "revenue"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "vector unavailable")
	assert.NotContains(t, out.String(), "vector unavailable")
}

func TestQueryCmd_NoResults(t *testing.T) {
	_, query, cleanup := setupTestServices()
	defer cleanup()

	query.resp = &domain.QueryResponse{}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"query", "nothing matches"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No results found")
}

func TestQueryCmd_ServiceNotConfigured(t *testing.T) {
	oldService := queryService
	queryService = nil
	defer func() {
		queryService = oldService
		rootCmd.SetArgs(nil)
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query", "test"})

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "query service not configured")
}

func TestQueryCmd_ServiceError(t *testing.T) {
	_, query, cleanup := setupTestServices()
	defer cleanup()

	query.err = errService

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"query", "test"})

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "query failed")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short", snippet("short", 10))
	assert.Equal(t, "abcde...", snippet("abcdefgh", 5))
}
