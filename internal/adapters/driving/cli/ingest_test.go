package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshiete-dev/oshiete-cli/internal/core/domain"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest", ingestCmd.Use)
}

func TestIngestCmd_Short(t *testing.T) {
	assert.Equal(t, "Ingest bucket documents into the vector store", ingestCmd.Short)
}

func TestIngestCmd_HasPrefixFlag(t *testing.T) {
	flag := ingestCmd.Flags().Lookup("prefix")
	require.NotNil(t, flag, "prefix flag should exist")
	assert.Equal(t, "p", flag.Shorthand)
	assert.Equal(t, "", flag.DefValue)
}

func TestIngestCmd_HasFilteringFlag(t *testing.T) {
	flag := ingestCmd.Flags().Lookup("filtering")
	require.NotNil(t, flag, "filtering flag should exist")
	assert.Equal(t, "f", flag.Shorthand)
}

func TestIngestCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "[1/2]")
	assert.Contains(t, buf.String(), "hr/就業規則.txt")
	assert.Contains(t, buf.String(), "3 chunks")
	assert.Contains(t, buf.String(), "Ingest summary")
	assert.Contains(t, buf.String(), "Succeeded: 2")
	assert.Contains(t, buf.String(), "Chunks:    5")
}

func TestIngestCmd_PassesFlags(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest", "--prefix", "hr/", "--filtering", "general"})
	defer func() {
		rootCmd.SetArgs(nil)
		ingestPrefix = ""
		ingestFiltering = ""
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	mock := ingestService.(*mockIngestService)
	assert.Equal(t, "hr/", mock.lastOpts.Prefix)
	assert.Equal(t, "general", mock.lastOpts.Filtering)
}

func TestIngestCmd_ReportsFailures(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	ingestService = &mockIngestService{report: &domain.IngestReport{
		TotalFiles: 1,
		Failed:     1,
		Elapsed:    time.Second,
		Outcomes: []domain.FileOutcome{
			{Filename: "broken.pdf", Status: domain.FileFailed, Reason: "extracting text: malformed xref"},
		},
	}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Failed:    1")
	assert.Contains(t, buf.String(), "Failed files:")
	assert.Contains(t, buf.String(), "broken.pdf: extracting text: malformed xref")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}

func TestIngestCmd_ServiceError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ingestService = &mockIngestService{err: errors.New("listing objects: bucket missing")}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest failed")
	assert.Contains(t, err.Error(), "bucket missing")
}
