package object

import (
	"bytes"
	"context"
	"io"
	"time"

	"resume-tailor/internal/shared/cache"
	"resume-tailor/internal/shared/telemetry"
)

// Cached reads objects through a byte cache. Writes go to the backing store and evict the key.
type Cached struct {
	store ObjectStore
	cache cache.Cache
}

// WithCache decorates store so Open is served from c when possible.
func WithCache(store ObjectStore, c cache.Cache) *Cached {
	return &Cached{store: store, cache: c}
}

func (s *Cached) Save(ctx context.Context, userId string, fileName string, r io.Reader) (string, int64, string, error) {
	return s.store.Save(ctx, userId, fileName, r)
}

func (s *Cached) SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	n, err := s.store.SaveWithKey(ctx, storageKey, contentType, r)
	if err != nil {
		return n, err
	}
	if delErr := s.cache.Delete(ctx, storageKey); delErr != nil {
		telemetry.Warn("object.cache.evict_failed", map[string]any{"key": storageKey, "error": delErr})
	}
	return n, nil
}

func (s *Cached) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if b, err := s.cache.Get(ctx, storageKey); err == nil {
		return io.NopCloser(bytes.NewReader(b)), nil
	}

	rc, err := s.store.Open(ctx, storageKey)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	if setErr := s.cache.Set(ctx, storageKey, b); setErr != nil {
		telemetry.Warn("object.cache.fill_failed", map[string]any{"key": storageKey, "error": setErr})
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *Cached) PresignGet(ctx context.Context, storageKey string, ttl time.Duration) (string, error) {
	return s.store.PresignGet(ctx, storageKey, ttl)
}

var _ ObjectStore = (*Cached)(nil)
