package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"resume-tailor/internal/shared/telemetry"
)

// StreamName is the JetStream stream that holds resume events.
const StreamName = "RESUME_EVENTS"

// SubjectPrefix prefixes every published subject.
const SubjectPrefix = "resume"

// NATSPublisher publishes events to JetStream.
type NATSPublisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewNATSPublisher connects to url and ensures the events stream exists.
func NewNATSPublisher(ctx context.Context, url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	streamCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(streamCtx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
	})
	if err != nil {
		telemetry.Warn("events.nats.stream_ensure_failed", map[string]any{"stream": StreamName, "error": err})
	}

	return &NATSPublisher{nc: nc, js: js}, nil
}

// Subject maps an event type onto its JetStream subject.
func Subject(eventType string) string {
	return SubjectPrefix + "." + eventType
}

// Publish sends evt to its subject.
func (p *NATSPublisher) Publish(ctx context.Context, evt Event) error {
	data, err := Encode(evt)
	if err != nil {
		return fmt.Errorf("encode nats message: %w", err)
	}
	subject := Subject(evt.Type)
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

var _ Publisher = (*NATSPublisher)(nil)
