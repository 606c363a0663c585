package quota

import (
	"context"
	"sync"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]Record
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]Record)}
}

func (s *memoryStore) Get(ctx context.Context, seed Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data[seed.UserID]
	if !ok {
		r = seed
		s.data[seed.UserID] = r
	}
	return r, nil
}

func (s *memoryStore) Update(ctx context.Context, seed Record, fn func(Record) (Record, error)) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data[seed.UserID]
	if !ok {
		r = seed
	}
	next, err := fn(r)
	if err != nil {
		s.data[seed.UserID] = r
		return Record{}, err
	}
	s.data[seed.UserID] = next
	return next, nil
}
