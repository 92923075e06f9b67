package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/lloyd/internal/mmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)

	ctx := context.Background()

	name := "images/photo-compressed.ppm"
	data := []byte("P3\n# 1x2\n2 1\n255\n12 34 56 12 34 56\n")

	w, err := store.Create(ctx, name)
	require.NoError(t, err)

	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Not visible before Close.
	_, err = os.Stat(filepath.Join(tmpDir, "images", "photo-compressed.ppm"))
	require.True(t, errors.Is(err, os.ErrNotExist))

	require.NoError(t, w.Close())

	blob, err := store.Open(ctx, name)
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 3)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "# 1x2", string(buf))

	got, err := io.ReadAll(NewReader(ctx, blob))
	require.NoError(t, err)
	assert.Equal(t, data, got)

	names, err := store.List(ctx, "images/")
	require.NoError(t, err)
	assert.Equal(t, []string{name}, names)
}

func TestLocalStore_PutReadAll(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "b.txt", []byte("0 1\n")))
	require.NoError(t, store.Put(ctx, "a.txt", []byte("0 0\n")))
	require.NoError(t, store.Put(ctx, "empty.txt", nil))

	got, err := ReadAll(ctx, store, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "0 0\n", string(got))

	got, err = ReadAll(ctx, store, "empty.txt")
	require.NoError(t, err)
	assert.Empty(t, got)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "empty.txt"}, names)
}

func TestLocalStore_NotFound(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	_, err := store.Open(context.Background(), "missing.ppm")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_Canceled(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "a.txt", []byte("1 2 3\n")))

	blob, err := store.Open(ctx, "a.txt")
	require.NoError(t, err)
	defer blob.Close()

	cctx, cancel := context.WithCancel(ctx)
	cancel()

	_, err = io.ReadAll(NewReader(cctx, blob))
	assert.ErrorIs(t, err, context.Canceled)

	_, err = store.Open(cctx, "a.txt")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalStore_ReadAtBounds(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "points.txt", []byte("1 2\n3 4\n")))

	blob, err := store.Open(ctx, "points.txt")
	require.NoError(t, err)

	buf := make([]byte, 8)
	n, err := blob.ReadAt(ctx, buf, 4)
	assert.Equal(t, 4, n)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, "3 4\n", string(buf[:n]))

	_, err = blob.ReadAt(ctx, buf, -1)
	assert.Error(t, err)

	require.NoError(t, blob.Close())
	_, err = blob.ReadAt(ctx, buf, 0)
	assert.ErrorIs(t, err, mmap.ErrClosed)
}
