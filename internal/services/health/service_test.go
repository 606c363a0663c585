package health

import (
	"context"
	"errors"
	"testing"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		db       Pinger
		wantOK   bool
		database string
	}{
		{name: "memory", db: nil, wantOK: true, database: "memory"},
		{name: "up", db: pingFunc(func(context.Context) error { return nil }), wantOK: true, database: "up"},
		{name: "down", db: pingFunc(func(context.Context) error { return errors.New("refused") }), wantOK: false, database: "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ok := NewService(tt.db).Status(context.Background())
			if ok != tt.wantOK || body["ok"] != tt.wantOK || body["database"] != tt.database {
				t.Fatalf("unexpected status %v (ok=%v)", body, ok)
			}
		})
	}
}
