package events

import (
	"context"
	"errors"

	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/telemetry"
)

// Publisher sends events to a bus.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

// Fanout publishes to every backend and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Emit publishes evt on a best-effort basis. Failures are logged and never
// surface to the caller.
func Emit(ctx context.Context, p Publisher, evt Event) {
	if p == nil {
		return
	}
	if evt.RequestID == "" {
		evt.RequestID = middleware.RequestIDFrom(ctx)
	}
	if err := p.Publish(ctx, evt); err != nil {
		telemetry.Warn("events.publish_failed", map[string]any{
			"type":        evt.Type,
			"document_id": evt.DocumentID,
			"request_id":  evt.RequestID,
			"error":       err,
		})
	}
}

var (
	_ Publisher = Noop{}
	_ Publisher = Fanout(nil)
)
