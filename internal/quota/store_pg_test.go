package quota

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGStoreConsumeLocksRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewPostgresService(NewPGStore(db), DefaultPolicy())
	svc.now = func() time.Time { return now }

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs("u1", now, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1 FOR UPDATE")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"remaining_generations", "last_generation_at", "created_at"}).
			AddRow(10, nil, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET remaining_generations = $1, last_generation_at = $2 WHERE id = $3")).
		WithArgs(9, now, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	rec, err := svc.Consume(context.Background(), "u1")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if rec.RemainingGenerations != 9 {
		t.Fatalf("expected 9 remaining, got %d", rec.RemainingGenerations)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGStoreConsumeExhaustedRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	last := now.Add(-time.Hour)
	svc := NewPostgresService(NewPGStore(db), DefaultPolicy())
	svc.now = func() time.Time { return now }

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"remaining_generations", "last_generation_at", "created_at"}).
			AddRow(0, last, now.Add(-24*time.Hour)))
	mock.ExpectRollback()

	if _, err := svc.Consume(context.Background(), "u1"); err != ErrQuotaExhausted {
		t.Fatalf("expected ErrQuotaExhausted, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
