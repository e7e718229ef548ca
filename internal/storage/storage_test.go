package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_PutAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "/uploads/")
	require.NoError(t, err)

	ctx := context.Background()
	url, err := store.Put(ctx, "avatars/u1/a.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/avatars/u1/a.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "avatars", "u1", "a.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	key, ok := store.KeyFromURL(url)
	require.True(t, ok)
	assert.Equal(t, "avatars/u1/a.png", key)

	require.NoError(t, store.Delete(ctx, key))
	_, err = os.Stat(filepath.Join(dir, "avatars", "u1", "a.png"))
	assert.True(t, os.IsNotExist(err))

	// second delete is a no-op
	assert.NoError(t, store.Delete(ctx, key))
}

func TestLocalStore_RejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "../escape.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, ok := store.KeyFromURL("/uploads/../../etc/passwd")
	assert.False(t, ok)

	_, ok = store.KeyFromURL("https://cdn.example.com/a.png")
	assert.False(t, ok)
}
