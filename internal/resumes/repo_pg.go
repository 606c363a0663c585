package resumes

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-tailor/resume/model"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, user_id, file_name, storage_key, preview_key, signed_url, job_description, user_notes, resume_parts, uploaded_at, updated_at, revision`

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    file_name,
    storage_key,
    preview_key,
    signed_url,
    job_description,
    user_notes,
    resume_parts,
    uploaded_at,
    updated_at,
    revision
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	parts, err := encodeParts(doc.ResumeParts)
	if err != nil {
		return err
	}

	var signedURL sql.NullString
	if doc.SignedURL != "" {
		signedURL = sql.NullString{String: doc.SignedURL, Valid: true}
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		doc.StorageKey,
		doc.PreviewKey,
		signedURL,
		doc.JobDescription,
		doc.UserNotes,
		string(parts),
		doc.UploadedAt,
		doc.UpdatedAt,
		doc.Revision,
	)
	return err
}

// GetByID fetches a document by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Document, error) {
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE id = $1 AND user_id = $2
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser lists documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	limit, offset = clampPage(limit, offset)
	query := `
SELECT ` + documentColumns + `
FROM documents
WHERE user_id = $1
ORDER BY uploaded_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Update writes the mutable fields and increments revision.
func (r *PGRepo) Update(ctx context.Context, doc Document, expectedRevision int) (Document, error) {
	const query = `
UPDATE documents
SET job_description = $3,
    user_notes = $4,
    signed_url = $5,
    updated_at = $6,
    preview_key = COALESCE(NULLIF($8, ''), preview_key),
    revision = revision + 1
WHERE id = $1 AND user_id = $2 AND ($7 = 0 OR revision = $7)
RETURNING ` + documentColumns

	var signedURL sql.NullString
	if doc.SignedURL != "" {
		signedURL = sql.NullString{String: doc.SignedURL, Valid: true}
	}

	updated, err := scanDocument(r.DB.QueryRowContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.JobDescription,
		doc.UserNotes,
		signedURL,
		time.Now().UTC(),
		expectedRevision,
		doc.PreviewKey,
	))
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Document{}, err
	}
	if expectedRevision == 0 {
		return Document{}, ErrNotFound
	}

	const exists = `SELECT 1 FROM documents WHERE id = $1 AND user_id = $2`
	var one int
	if err := r.DB.QueryRowContext(ctx, exists, doc.ID, doc.UserID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return Document{}, ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var signedURL sql.NullString
	var parts []byte
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.StorageKey,
		&doc.PreviewKey,
		&signedURL,
		&doc.JobDescription,
		&doc.UserNotes,
		&parts,
		&doc.UploadedAt,
		&doc.UpdatedAt,
		&doc.Revision,
	)
	if err != nil {
		return Document{}, err
	}
	if signedURL.Valid {
		doc.SignedURL = signedURL.String
	}
	if len(parts) > 0 {
		if err := json.Unmarshal(parts, &doc.ResumeParts); err != nil {
			return Document{}, fmt.Errorf("decode resume_parts: %w", err)
		}
	}
	if doc.ResumeParts == nil {
		doc.ResumeParts = []model.ResumePart{}
	}
	return doc, nil
}

func encodeParts(parts []model.ResumePart) ([]byte, error) {
	if parts == nil {
		parts = []model.ResumePart{}
	}
	b, err := json.Marshal(parts)
	if err != nil {
		return nil, fmt.Errorf("encode resume_parts: %w", err)
	}
	return b, nil
}

var _ Repo = (*PGRepo)(nil)
