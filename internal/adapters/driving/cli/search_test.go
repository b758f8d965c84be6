package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasFilterFlags(t *testing.T) {
	for _, name := range []string{"limit", "json", "document", "chat", "project", "user", "include-document"} {
		assert.NotNil(t, searchCmd.Flags().Lookup(name), "flag %s should exist", name)
	}

	limit := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, limit)
	assert.Equal(t, "n", limit.Shorthand)
	assert.Equal(t, "10", limit.DefValue)
}

func TestSearchCmd_ReturnsResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	docID := uploadTestDocument(t, "t0 t1 t2 t3 t4 t5 t6 t7")

	out, err := execute(t, "search", "some query text here")
	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, docID)
}

func TestSearchCmd_NoResults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "anything")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_DocumentFilter(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	first := uploadTestDocument(t, "t0 t1 t2 t3 t4 t5 t6 t7")
	second := uploadTestDocument(t, "u0 u1 u2 u3 u4 u5 u6 u7")

	t.Cleanup(func() { searchDocumentID = "" })
	out, err := execute(t, "search", "query", "--document", first)
	require.NoError(t, err)
	assert.Contains(t, out, first)
	assert.NotContains(t, out, second)
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	uploadTestDocument(t, "t0 t1 t2 t3")

	t.Cleanup(func() { searchJSON = false })
	out, err := execute(t, "search", "query", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, "[")
	assert.Contains(t, out, "\"Content\"")
}
