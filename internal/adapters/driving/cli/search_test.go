package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbdb-labs/kbdb/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [modality] [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyTwoArgs(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "qa"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestSearchCmd_HasTopKFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag, "top-k flag should exist")
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "3", flag.DefValue)
}

func TestSearchCmd_ExecutesWithQuery(t *testing.T) {
	mock, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "qa", "test query"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "qa", mock.lastModality)
	assert.Equal(t, "test query", mock.lastQuery)
	assert.Equal(t, domain.DefaultTopK, mock.lastTopK)
	assert.Contains(t, buf.String(), "Test Document")
	assert.Contains(t, buf.String(), "Content: Some relevant content")
}

func TestSearchCmd_ExecutesWithTopKFlag(t *testing.T) {
	mock, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--top-k", "25", "qa", "test query"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchTopK = domain.DefaultTopK // Reset flag
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, 25, mock.lastTopK)
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "--json", "qa", "test query"})
	defer func() {
		rootCmd.SetArgs(nil)
		searchJSON = false // Reset flag
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	// JSON uses capitalized field names from struct tags
	assert.Contains(t, buf.String(), "\"DocumentName\"")
	assert.Contains(t, buf.String(), "\"Score\"")
}

func TestSearchCmd_NoResults(t *testing.T) {
	old := searchService
	searchService = &mockSearchService{}
	defer func() {
		searchService = old
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"search", "qa", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "No relevant information found")
}

func TestSearchCmd_ServiceError(t *testing.T) {
	cleanup := setupFailingService("store unavailable")
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"search", "qa", "test"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search failed")
}

func TestOutputSearchJSON_EmptyResults(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	err := outputSearchJSON(rootCmd, []domain.SearchResult{})

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "[]")
}
