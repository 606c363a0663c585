package recommendations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"resume-tailor/internal/events"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/quota"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/telemetry"
)

var tracer = telemetry.Tracer("recommendations")

// DocumentSource loads the document a generation is for.
type DocumentSource interface {
	Get(ctx context.Context, userID, id string) (resumes.Document, error)
}

// Gate admits generation requests.
type Gate interface {
	Consume(ctx context.Context, userID string) (quota.Record, error)
	Status(ctx context.Context, userID string) (quota.Status, error)
}

// Service requests recommendations from the language model.
type Service struct {
	Docs   DocumentSource
	Quota  Gate
	LLM    llm.Client
	Events events.Publisher

	// MockChunkDelay paces mock streams so clients see incremental output.
	MockChunkDelay time.Duration
}

// NewService constructs a Service.
func NewService(docs DocumentSource, gate Gate, client llm.Client, publisher events.Publisher) *Service {
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &Service{Docs: docs, Quota: gate, LLM: client, Events: publisher}
}

// Generation is an admitted request. Run it with exactly one of Stream or Complete.
type Generation struct {
	svc    *Service
	doc    resumes.Document
	userID string
	mock   bool
	prompt string
	start  time.Time
}

// Document returns the resume the generation is for.
func (g *Generation) Document() resumes.Document { return g.doc }

// Mock reports whether the generation serves the fixed mock set.
func (g *Generation) Mock() bool { return g.mock }

// Begin loads the document and, unless mock is set, consumes one generation
// from the caller's quota. Quota is not refunded if the generation later fails.
func (s *Service) Begin(ctx context.Context, userID, docID string, mock bool) (*Generation, error) {
	doc, err := s.Docs.Get(ctx, userID, docID)
	if err != nil {
		return nil, err
	}

	g := &Generation{svc: s, doc: doc, userID: userID, mock: mock, start: time.Now()}
	if mock {
		metrics.IncMockGeneration()
		return g, nil
	}

	if _, err := s.Quota.Consume(ctx, userID); err != nil {
		if !errors.Is(err, quota.ErrQuotaExhausted) {
			return nil, fmt.Errorf("consume quota: %w", err)
		}
		metrics.IncGenerationRejected()
		st, statusErr := s.Quota.Status(ctx, userID)
		if statusErr != nil {
			return nil, fmt.Errorf("quota status: %w", statusErr)
		}
		telemetry.Info("recommendations.quota_exhausted", map[string]any{
			"user_id":     userID,
			"document_id": docID,
		})
		events.Emit(ctx, s.Events, events.New(events.TypeRecommendationsRejected, userID, docID, map[string]any{
			"reason": "quota_exhausted",
		}))
		return nil, &QuotaError{Status: st}
	}

	metrics.IncGenerationStarted()
	g.prompt = BuildPrompt(doc.JobDescription, doc.UserNotes, doc.ResumeParts)
	return g, nil
}

// Complete runs the generation in blocking mode.
func (g *Generation) Complete(ctx context.Context) (Result, error) {
	ctx, span := g.startSpan(ctx, "recommendations.Complete")
	defer span.End()

	if g.mock {
		res := MockResult()
		g.finish(ctx, span, "complete", res, nil)
		return res, nil
	}

	text, err := g.svc.LLM.Complete(ctx, g.prompt)
	if err != nil {
		g.finish(ctx, span, "complete", Result{}, err)
		return Result{}, err
	}
	res, err := Finalize(text)
	if err != nil {
		telemetry.Warn("recommendations.malformed", map[string]any{
			"document_id": g.doc.ID,
			"bytes":       len(text),
			"error":       err,
		})
	}
	g.finish(ctx, span, "complete", res, err)
	return res, err
}

// Stream runs the generation in streaming mode, passing each raw chunk to emit
// as it arrives. The concatenated chunks form the complete JSON document. An
// error from emit stops the stream and is returned.
func (g *Generation) Stream(ctx context.Context, emit func(chunk string) error) (Result, error) {
	ctx, span := g.startSpan(ctx, "recommendations.Stream")
	defer span.End()

	var acc Accumulator
	forward := func(chunk string) error {
		if chunk == "" {
			return nil
		}
		acc.Write(chunk)
		return emit(chunk)
	}

	var err error
	if g.mock {
		err = g.streamMock(ctx, forward)
	} else {
		err = g.svc.LLM.Stream(ctx, g.prompt, forward)
	}
	metrics.AddStreamChunks(acc.Chunks())
	span.SetAttributes(attribute.Int("stream.chunks", acc.Chunks()))
	if err != nil {
		g.finish(ctx, span, "stream", Result{}, err)
		return Result{}, err
	}

	res, err := acc.Finalize()
	if err != nil {
		fields := map[string]any{
			"document_id": g.doc.ID,
			"chunks":      acc.Chunks(),
			"bytes":       len(acc.Text()),
			"error":       err,
		}
		if snap, snapErr := acc.Snapshot(); snapErr == nil {
			fields["complete_items"] = snap.CompleteCount()
		}
		telemetry.Warn("recommendations.stream.malformed", fields)
	}
	g.finish(ctx, span, "stream", res, err)
	return res, err
}

func (g *Generation) streamMock(ctx context.Context, emit func(string) error) error {
	for _, chunk := range MockChunks() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := emit(chunk); err != nil {
			return err
		}
		if g.svc.MockChunkDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(g.svc.MockChunkDelay):
			}
		}
	}
	return nil
}

func (g *Generation) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("document.id", g.doc.ID),
		attribute.Bool("generation.mock", g.mock),
	))
}

func (g *Generation) finish(ctx context.Context, span trace.Span, mode string, res Result, err error) {
	elapsed := metrics.SinceMillis(g.start)
	fields := map[string]any{
		"document_id": g.doc.ID,
		"user_id":     g.userID,
		"mode":        mode,
		"mock":        g.mock,
		"duration_ms": elapsed,
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !g.mock {
			if errors.Is(err, ErrMalformedOutput) {
				metrics.IncGenerationMalformed()
			} else {
				metrics.IncGenerationFailed()
			}
		}
		fields["error"] = err
		telemetry.Error("recommendations.failed", fields)
		return
	}

	span.SetAttributes(attribute.Int("recommendations.count", len(res.Recommendations)))
	if !g.mock {
		metrics.IncGenerationCompleted()
		metrics.ObserveGenerationDurationMs(elapsed)
	}
	fields["count"] = len(res.Recommendations)
	telemetry.Info("recommendations.served", fields)
	events.Emit(ctx, g.svc.Events, events.New(events.TypeRecommendationsServed, g.userID, g.doc.ID, map[string]any{
		"mode":  mode,
		"mock":  g.mock,
		"count": len(res.Recommendations),
	}))
}
