package object_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-tailor/internal/shared/cache"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/storage/object/local"
)

type countingStore struct {
	object.ObjectStore
	opens int
}

func (s *countingStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	s.opens++
	return s.ObjectStore.Open(ctx, key)
}

func TestCachedOpenReadsThrough(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{ObjectStore: local.New(t.TempDir())}
	store := object.WithCache(backing, cache.NewMemory(time.Hour))

	_, err := store.SaveWithKey(ctx, "u/a.docx", "application/octet-stream", strings.NewReader("v1"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		b, err := object.ReadAll(ctx, store, "u/a.docx")
		require.NoError(t, err)
		assert.Equal(t, "v1", string(b))
	}
	assert.Equal(t, 1, backing.opens)

	_, err = store.SaveWithKey(ctx, "u/a.docx", "application/octet-stream", bytes.NewReader([]byte("v2")))
	require.NoError(t, err)

	b, err := object.ReadAll(ctx, store, "u/a.docx")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(b))
	assert.Equal(t, 2, backing.opens)
}

func TestCachedOpenMissing(t *testing.T) {
	store := object.WithCache(local.New(t.TempDir()), cache.NewMemory(time.Hour))
	_, err := store.Open(context.Background(), "nope")
	assert.ErrorIs(t, err, object.ErrNotFound)
}
