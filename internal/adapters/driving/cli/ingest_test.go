package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func resetIngestFlags() {
	ingestSourceID = ""
	ingestTitle = ""
	ingestTicker = ""
	ingestDocType = ""
	ingestFormType = ""
	ingestDate = ""
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [file]", ingestCmd.Use)
}

func TestIngestCmd_ReadsFileAndDefaults(t *testing.T) {
	ingest, _, cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	path := writeTestFile(t, "report.txt", "quarterly revenue grew")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path})

	err := rootCmd.Execute()

	require.NoError(t, err)
	require.Len(t, ingest.ingested, 1)
	doc := ingest.ingested[0]
	assert.Equal(t, path, doc.SourceID)
	assert.Equal(t, "report.txt", doc.Title)
	assert.Equal(t, "quarterly revenue grew", doc.Content)
	assert.Contains(t, buf.String(), "Ingested")
	assert.Contains(t, buf.String(), "Chunks written: 3")
}

func TestIngestCmd_MarkdownTitleAndStripping(t *testing.T) {
	ingest, _, cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	path := writeTestFile(t, "notes.md", "# Earnings Notes\n\nMargins were **stable**.")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path})

	err := rootCmd.Execute()

	require.NoError(t, err)
	require.Len(t, ingest.ingested, 1)
	doc := ingest.ingested[0]
	assert.Equal(t, "Earnings Notes", doc.Title)
	assert.Equal(t, "Earnings Notes\n\nMargins were stable.", doc.Content)
}

func TestIngestCmd_TitleFlagOverridesExtracted(t *testing.T) {
	ingest, _, cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	path := writeTestFile(t, "notes.md", "# Extracted Title\n\nBody.")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", path, "--title", "Chosen Title"})

	err := rootCmd.Execute()

	require.NoError(t, err)
	require.Len(t, ingest.ingested, 1)
	assert.Equal(t, "Chosen Title", ingest.ingested[0].Title)
}

func TestIngestCmd_MetadataFlags(t *testing.T) {
	ingest, _, cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	path := writeTestFile(t, "10k.txt", "annual report")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{
		"ingest", path,
		"--source-id", "sec/aapl/10-k/2024",
		"--title", "Apple 10-K",
		"--ticker", "AAPL",
		"--form-type", "10-K",
		"--date", "2024-11-01",
	})

	err := rootCmd.Execute()

	require.NoError(t, err)
	require.Len(t, ingest.ingested, 1)
	doc := ingest.ingested[0]
	assert.Equal(t, "sec/aapl/10-k/2024", doc.SourceID)
	assert.Equal(t, "Apple 10-K", doc.Title)
	assert.Equal(t, "AAPL", doc.Metadata["ticker"])
	assert.Equal(t, "10-K", doc.Metadata["form_type"])
	assert.Equal(t, "2024-11-01", doc.Metadata["published_date"])
}

func TestIngestCmd_MissingFile(t *testing.T) {
	_, _, cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "/does/not/exist.txt"})

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestIngestCmd_ServiceError(t *testing.T) {
	ingest, _, cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	ingest.err = errService
	path := writeTestFile(t, "doc.txt", "content")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", path})

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingest failed")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	oldService := ingestService
	ingestService = nil
	defer func() {
		ingestService = oldService
		rootCmd.SetArgs(nil)
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "whatever.txt"})

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}
