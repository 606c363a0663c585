package resumes

import (
	"context"
	"sort"
	"sync"
	"time"

	"resume-tailor/resume/model"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document // id -> document
	now  func() time.Time
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new document.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = cloneDocument(doc)
	return nil
}

// GetByID returns a document by ID for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[id]
	if !ok || doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	return cloneDocument(doc), nil
}

// ListByUser returns documents for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit, offset = clampPage(limit, offset)

	r.mu.RLock()
	docs := make([]Document, 0)
	for _, doc := range r.data {
		if doc.UserID == userID {
			docs = append(docs, cloneDocument(doc))
		}
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	if offset >= len(docs) {
		return []Document{}, nil
	}
	end := offset + limit
	if end > len(docs) {
		end = len(docs)
	}
	return docs[offset:end], nil
}

// Update applies doc's mutable fields when the revision matches.
func (r *MemoryRepo) Update(ctx context.Context, doc Document, expectedRevision int) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.data[doc.ID]
	if !ok || cur.UserID != doc.UserID {
		return Document{}, ErrNotFound
	}
	if expectedRevision != 0 && cur.Revision != expectedRevision {
		return Document{}, ErrConflict
	}
	cur.JobDescription = doc.JobDescription
	cur.UserNotes = doc.UserNotes
	cur.SignedURL = doc.SignedURL
	if doc.PreviewKey != "" {
		cur.PreviewKey = doc.PreviewKey
	}
	cur.UpdatedAt = r.now()
	cur.Revision++
	r.data[cur.ID] = cur
	return cloneDocument(cur), nil
}

func cloneDocument(doc Document) Document {
	if doc.ResumeParts != nil {
		doc.ResumeParts = append([]model.ResumePart(nil), doc.ResumeParts...)
	}
	return doc
}

var _ Repo = (*MemoryRepo)(nil)
