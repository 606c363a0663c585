package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"resume-tailor/internal/events"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/shared/util"
	"resume-tailor/resume/docx"
	"resume-tailor/resume/model"
)

// DefaultSignedURLTTL is how long preview links stay valid.
const DefaultSignedURLTTL = 24 * time.Hour

var tracer = telemetry.Tracer("resumes")

// Service contains business logic for resumes.
type Service struct {
	Store        object.ObjectStore
	Repo         Repo
	Events       events.Publisher
	SignedURLTTL time.Duration

	now func() time.Time
}

// NewService constructs a Service.
func NewService(store object.ObjectStore, repo Repo, publisher events.Publisher, signedURLTTL time.Duration) *Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if signedURLTTL <= 0 {
		signedURLTTL = DefaultSignedURLTTL
	}
	return &Service{
		Store:        store,
		Repo:         repo,
		Events:       publisher,
		SignedURLTTL: signedURLTTL,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// UploadInput is a resume upload request.
type UploadInput struct {
	FileName       string
	JobDescription string
	UserNotes      string
	Data           []byte
}

// UpdateInput carries optional field changes. Nil fields are left untouched.
type UpdateInput struct {
	JobDescription *string
	UserNotes      *string
	Revision       int
}

// ApplyResult describes a written preview.
type ApplyResult struct {
	Document Document
	Report   model.ApplyReport
}

// Upload extracts the line model, stores the original and an initial preview, and records the document.
func (s *Service) Upload(ctx context.Context, userID string, in UploadInput) (Document, error) {
	ctx, span := tracer.Start(ctx, "resumes.Upload")
	defer span.End()

	if len(in.Data) == 0 {
		return Document{}, invalid("No file uploaded.")
	}
	if strings.ToLower(filepath.Ext(in.FileName)) != ".docx" {
		return Document{}, invalid("Only .docx files are allowed.")
	}
	if err := validateContext(in.JobDescription, in.UserNotes); err != nil {
		return Document{}, err
	}
	if strings.TrimSpace(in.JobDescription) == "" {
		return Document{}, invalid("Job description is required.")
	}

	parts, err := docx.Extract(in.Data)
	if err != nil {
		return Document{}, err
	}

	storageKey, _, _, err := s.Store.Save(ctx, userID, in.FileName, bytes.NewReader(in.Data))
	if err != nil {
		return Document{}, fmt.Errorf("save original: %w", err)
	}
	if len(storageKey)+len(PreviewSuffix)+maxPreviewVersionLength > MaxStorageKeyLength {
		return Document{}, fmt.Errorf("storage key length %d exceeds %d", len(storageKey), MaxStorageKeyLength)
	}
	previewKey := PreviewKeyFor(storageKey)
	if _, err := s.Store.SaveWithKey(ctx, previewKey, docx.ContentType, bytes.NewReader(in.Data)); err != nil {
		return Document{}, fmt.Errorf("save preview: %w", err)
	}

	signedURL, err := s.presign(ctx, previewKey)
	if err != nil {
		return Document{}, err
	}

	now := s.now()
	doc := Document{
		ID:             uuid.NewString(),
		UserID:         userID,
		FileName:       util.TruncateRunes(strings.TrimSpace(in.FileName), MaxFileNameLength),
		StorageKey:     storageKey,
		PreviewKey:     previewKey,
		SignedURL:      signedURL,
		JobDescription: in.JobDescription,
		UserNotes:      in.UserNotes,
		ResumeParts:    parts,
		UploadedAt:     now,
		UpdatedAt:      now,
		Revision:       1,
	}
	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	span.SetAttributes(attribute.String("document.id", doc.ID), attribute.Int("document.parts", len(parts)))

	metrics.IncUploads()
	telemetry.Info("resumes.uploaded", map[string]any{
		"document_id": doc.ID,
		"user_id":     userID,
		"parts":       len(parts),
		"bytes":       len(in.Data),
	})
	events.Emit(ctx, s.Events, events.New(events.TypeResumeUploaded, userID, doc.ID, map[string]any{
		"fileName": doc.FileName,
		"parts":    len(parts),
	}))
	return doc, nil
}

// Get returns a document with a freshly signed preview URL.
func (s *Service) Get(ctx context.Context, userID, id string) (Document, error) {
	doc, err := s.lookup(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	if url, err := s.presign(ctx, doc.PreviewKey); err == nil {
		doc.SignedURL = url
	} else {
		telemetry.Warn("resumes.presign_failed", map[string]any{"document_id": id, "error": err})
	}
	return doc, nil
}

// List returns the caller's documents, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if userID == "" {
		return nil, invalid("user id required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// UpdateDetails changes the job description or user notes.
func (s *Service) UpdateDetails(ctx context.Context, userID, id string, in UpdateInput) (Document, error) {
	if in.Revision < 0 {
		return Document{}, invalid("revision must not be negative")
	}
	doc, err := s.lookup(ctx, userID, id)
	if err != nil {
		return Document{}, err
	}
	if in.JobDescription != nil {
		if strings.TrimSpace(*in.JobDescription) == "" {
			return Document{}, invalid("Job description is required.")
		}
		doc.JobDescription = *in.JobDescription
	}
	if in.UserNotes != nil {
		doc.UserNotes = *in.UserNotes
	}
	if err := validateContext(doc.JobDescription, doc.UserNotes); err != nil {
		return Document{}, err
	}

	updated, err := s.Repo.Update(ctx, doc, in.Revision)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			metrics.IncRevisionConflict()
		}
		return Document{}, err
	}
	events.Emit(ctx, s.Events, events.New(events.TypeResumeUpdated, userID, id, map[string]any{
		"revision": updated.Revision,
	}))
	return updated, nil
}

// ApplyRecommendations writes the accepted edits into a copy of the original and stores it as the preview.
// The original blob is never modified.
func (s *Service) ApplyRecommendations(ctx context.Context, userID, id string, edits []model.Edit, revision int) (ApplyResult, error) {
	ctx, span := tracer.Start(ctx, "resumes.ApplyRecommendations")
	defer span.End()

	if revision < 0 {
		return ApplyResult{}, invalid("revision must not be negative")
	}
	doc, err := s.lookup(ctx, userID, id)
	if err != nil {
		return ApplyResult{}, err
	}
	if revision != 0 && doc.Revision != revision {
		metrics.IncRevisionConflict()
		return ApplyResult{}, ErrConflict
	}

	original, err := object.ReadAll(ctx, s.Store, doc.StorageKey)
	if err != nil {
		return ApplyResult{}, fmt.Errorf("read original: %w", err)
	}

	out, report, err := docx.Apply(original, edits)
	if err != nil {
		return ApplyResult{}, err
	}

	// The record switches to the new preview only when the conditional update wins.
	previewKey := PreviewKeyAt(doc.StorageKey, doc.Revision+1, strings.ReplaceAll(uuid.NewString(), "-", ""))
	if _, err := s.Store.SaveWithKey(ctx, previewKey, docx.ContentType, bytes.NewReader(out)); err != nil {
		return ApplyResult{}, fmt.Errorf("save preview: %w", err)
	}
	signedURL, err := s.presign(ctx, previewKey)
	if err != nil {
		return ApplyResult{}, err
	}
	doc.PreviewKey = previewKey
	doc.SignedURL = signedURL

	updated, err := s.Repo.Update(ctx, doc, revision)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			metrics.IncRevisionConflict()
			telemetry.Warn("resumes.apply.conflict", map[string]any{
				"document_id":    id,
				"user_id":        userID,
				"revision":       revision,
				"orphan_preview": previewKey,
			})
		}
		return ApplyResult{}, err
	}
	span.SetAttributes(attribute.Int("edits.applied", report.Applied), attribute.Int("edits.ignored", report.Ignored))

	metrics.ObserveApply(report.Applied, report.Ignored)
	fields := map[string]any{
		"document_id":   id,
		"user_id":       userID,
		"applied_count": report.Applied,
		"ignored_count": report.Ignored,
		"revision":      updated.Revision,
	}
	if report.Ignored > 0 {
		telemetry.Warn("resumes.apply.ignored_edits", fields)
	} else {
		telemetry.Info("resumes.apply", fields)
	}
	events.Emit(ctx, s.Events, events.New(events.TypeRecommendationsApplied, userID, id, map[string]any{
		"appliedCount": report.Applied,
		"ignoredCount": report.Ignored,
		"revision":     updated.Revision,
	}))
	return ApplyResult{Document: updated, Report: report}, nil
}

func (s *Service) lookup(ctx context.Context, userID, id string) (Document, error) {
	if strings.TrimSpace(id) == "" {
		return Document{}, invalid("id is required")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Document{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID, id)
}

func (s *Service) presign(ctx context.Context, key string) (string, error) {
	url, err := s.Store.PresignGet(ctx, key, s.SignedURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign preview: %w", err)
	}
	if len(url) > MaxSignedURLLength {
		return "", fmt.Errorf("presign preview: url length %d exceeds %d", len(url), MaxSignedURLLength)
	}
	return url, nil
}

func validateContext(jobDescription, userNotes string) error {
	if utf8.RuneCountInString(jobDescription) > MaxJobDescriptionLength {
		return invalid(fmt.Sprintf("jobDescription must be at most %d characters", MaxJobDescriptionLength))
	}
	if utf8.RuneCountInString(userNotes) > MaxUserNotesLength {
		return invalid(fmt.Sprintf("userNotes must be at most %d characters", MaxUserNotesLength))
	}
	return nil
}
