package quota

import (
	"context"
	"time"
)

type store interface {
	Get(ctx context.Context, seed Record) (Record, error)
	Update(ctx context.Context, seed Record, fn func(Record) (Record, error)) (Record, error)
}

// Service gates generation requests per user.
type Service struct {
	store  store
	policy Policy
	now    func() time.Time
}

// NewService constructs a Service with an in-memory store.
func NewService(policy Policy) *Service {
	return &Service{store: newMemoryStore(), policy: policy, now: utcNow}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store, policy Policy) *Service {
	return &Service{store: pgStore, policy: policy, now: utcNow}
}

func utcNow() time.Time { return time.Now().UTC() }

// Policy returns the active replenishment policy.
func (s *Service) Policy() Policy { return s.policy }

// Consume admits one generation for userID or returns ErrQuotaExhausted.
func (s *Service) Consume(ctx context.Context, userID string) (Record, error) {
	now := s.now()
	return s.store.Update(ctx, s.policy.seed(userID, now), func(r Record) (Record, error) {
		return s.policy.Consume(r, now)
	})
}

// Status reports the current quota state without consuming anything.
func (s *Service) Status(ctx context.Context, userID string) (Status, error) {
	now := s.now()
	r, err := s.store.Get(ctx, s.policy.seed(userID, now))
	if err != nil {
		return Status{}, err
	}
	return s.policy.Status(r, now), nil
}

// Reset restores the floor and clears the cooldown. Dev only.
func (s *Service) Reset(ctx context.Context, userID string) (Record, error) {
	now := s.now()
	return s.store.Update(ctx, s.policy.seed(userID, now), func(r Record) (Record, error) {
		r.RemainingGenerations = s.policy.Floor
		r.LastGenerationAt = nil
		return r, nil
	})
}
