package local

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

func TestFileStore_WriteReadDelete(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "key-1", []byte("hello")))

	data, err := store.Read(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	// Overwrite replaces the previous value.
	require.NoError(t, store.Write(ctx, "key-1", []byte("updated")))
	data, err = store.Read(ctx, "key-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("updated"), data)

	require.NoError(t, store.Delete(ctx, "key-1"))
	_, err = store.Read(ctx, "key-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Deleting a missing key is fine.
	assert.NoError(t, store.Delete(ctx, "key-1"))
}

func TestFileStore_RejectsTraversalKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "..", "../escape", "a/b", ".hidden"} {
		err := store.Write(ctx, key, []byte("x"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "key %q", key)
	}
}
