package resumes

import (
	"fmt"
	"time"

	"resume-tailor/resume/model"
)

// Column limits enforced before persisting.
const (
	MaxFileNameLength       = 255
	MaxStorageKeyLength     = 1024
	MaxSignedURLLength      = 2083
	MaxJobDescriptionLength = 16000
	MaxUserNotesLength      = 4000
)

// PreviewSuffix is appended to the original's key to address the preview artifact.
const PreviewSuffix = ".preview"

// Document is an uploaded resume and its tailoring context.
type Document struct {
	ID             string
	UserID         string
	FileName       string
	StorageKey     string
	PreviewKey     string
	SignedURL      string
	JobDescription string
	UserNotes      string
	ResumeParts    []model.ResumePart
	UploadedAt     time.Time
	UpdatedAt      time.Time
	Revision       int
}

// maxPreviewVersionLength bounds the suffix added by PreviewKeyAt: "." + revision + "-" + 8 hex chars.
const maxPreviewVersionLength = 1 + 10 + 1 + 8

// PreviewKeyFor derives the preview key from the original's key.
func PreviewKeyFor(storageKey string) string {
	return storageKey + PreviewSuffix
}

// PreviewKeyAt addresses the preview written for revision. Concurrent writers of
// the same revision get distinct keys through nonce.
func PreviewKeyAt(storageKey string, revision int, nonce string) string {
	if len(nonce) > 8 {
		nonce = nonce[:8]
	}
	return fmt.Sprintf("%s.%d-%s", PreviewKeyFor(storageKey), revision, nonce)
}
