package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(time.Hour)

	_, err := c.Get(ctx, "k")
	require.ErrorIs(t, err, ErrMiss)

	value := []byte("docx-bytes")
	require.NoError(t, c.Set(ctx, "k", value))
	value[0] = 'X'

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "docx-bytes", string(got))

	got[0] = 'Y'
	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "docx-bytes", string(again))

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryExpires(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(10 * time.Millisecond)
	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	time.Sleep(30 * time.Millisecond)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKeyPrefix(t *testing.T) {
	r := NewRedis(NewRedisClient("redis://localhost:6379/0"), "blob", time.Minute)
	assert.Equal(t, "blob:resumes/a.docx", r.key("resumes/a.docx"))

	bare := NewRedis(NewRedisClient("localhost:6379"), "", time.Minute)
	assert.Equal(t, "a", bare.key("a"))
}
