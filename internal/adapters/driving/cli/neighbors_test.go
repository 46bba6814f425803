package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/calliope-labs/calliope/internal/core/domain"
)

func TestNeighborsCmd_Use(t *testing.T) {
	assert.Equal(t, "neighbors [chunk-id]", neighborsCmd.Use)
}

func TestNeighborsCmd_PrintsNeighbors(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mock := searchService.(*mockSearchService)
	mock.neighbors = []domain.Chunk{
		{ID: "a/1/chunk-0", Text: "first chunk"},
		{ID: "a/1/chunk-2", Text: "third chunk"},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"neighbors", "a/1/chunk-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "a/1/chunk-0")
	assert.Contains(t, buf.String(), "first chunk")
	assert.Contains(t, buf.String(), "a/1/chunk-2")
}

func TestNeighborsCmd_NoNeighbors(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"neighbors", "a/1/chunk-0"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No neighbors")
}

func TestNeighborsCmd_ServiceNotConfigured(t *testing.T) {
	oldService := searchService
	searchService = nil
	defer func() {
		searchService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"neighbors", "a/1/chunk-0"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search service not configured")
}
