package quota

import (
	"context"
	"database/sql"
	"time"
)

type pgStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed quota store over the users table.
func NewPGStore(db *sql.DB) *pgStore {
	return &pgStore{DB: db}
}

const insertUserSQL = `
INSERT INTO users (id, created_at, remaining_generations, last_generation_at)
VALUES ($1, $2, $3, NULL)
ON CONFLICT (id) DO NOTHING`

const selectUserSQL = `
SELECT remaining_generations, last_generation_at, created_at FROM users WHERE id = $1`

func (s *pgStore) Get(ctx context.Context, seed Record) (Record, error) {
	if _, err := s.DB.ExecContext(ctx, insertUserSQL, seed.UserID, seed.CreatedAt, seed.RemainingGenerations); err != nil {
		return Record{}, err
	}
	return scanRecord(s.DB.QueryRowContext(ctx, selectUserSQL, seed.UserID), seed.UserID)
}

func (s *pgStore) Update(ctx context.Context, seed Record, fn func(Record) (Record, error)) (rec Record, err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, insertUserSQL, seed.UserID, seed.CreatedAt, seed.RemainingGenerations); err != nil {
		return Record{}, err
	}
	current, err := scanRecord(tx.QueryRowContext(ctx, selectUserSQL+" FOR UPDATE", seed.UserID), seed.UserID)
	if err != nil {
		return Record{}, err
	}

	next, err := fn(current)
	if err != nil {
		return Record{}, err
	}

	if _, err = tx.ExecContext(ctx, `
UPDATE users SET remaining_generations = $1, last_generation_at = $2 WHERE id = $3`,
		next.RemainingGenerations, nullTime(next.LastGenerationAt), seed.UserID); err != nil {
		return Record{}, err
	}
	if err = tx.Commit(); err != nil {
		return Record{}, err
	}
	return next, nil
}

func scanRecord(row *sql.Row, userID string) (Record, error) {
	r := Record{UserID: userID}
	var last sql.NullTime
	if err := row.Scan(&r.RemainingGenerations, &last, &r.CreatedAt); err != nil {
		return Record{}, err
	}
	if last.Valid {
		t := last.Time.UTC()
		r.LastGenerationAt = &t
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
