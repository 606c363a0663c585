package resumes

import (
	"time"

	"resume-tailor/resume/model"
)

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	ID             string             `json:"id"`
	FileName       string             `json:"fileName"`
	SignedURL      string             `json:"signedUrl"`
	JobDescription string             `json:"jobDescription"`
	UserNotes      string             `json:"userNotes"`
	ResumeParts    []model.ResumePart `json:"resumeParts"`
	Revision       int                `json:"revision"`
	UploadedAt     time.Time          `json:"uploadedAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// DocumentSummary is a list entry without the line model.
type DocumentSummary struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	Revision   int       `json:"revision"`
	UploadedAt time.Time `json:"uploadedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type updateRequest struct {
	JobDescription *string `json:"jobDescription" binding:"omitempty,max=16000"`
	UserNotes      *string `json:"userNotes" binding:"omitempty,max=4000"`
	Revision       int     `json:"revision" binding:"gte=0"`
}

type editRequest struct {
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
}

type processRequest struct {
	ID              string        `json:"id" binding:"required,uuid"`
	Recommendations []editRequest `json:"recommendations" binding:"omitempty,dive"`
	Revision        int           `json:"revision" binding:"gte=0"`
}

// ApplyResponse reports a written preview.
type ApplyResponse struct {
	ID           string `json:"id"`
	SignedURL    string `json:"signedUrl"`
	Revision     int    `json:"revision"`
	AppliedCount int    `json:"appliedCount"`
	IgnoredCount int    `json:"ignoredCount"`
}

func toResponse(doc Document) DocumentResponse {
	parts := doc.ResumeParts
	if parts == nil {
		parts = []model.ResumePart{}
	}
	return DocumentResponse{
		ID:             doc.ID,
		FileName:       doc.FileName,
		SignedURL:      doc.SignedURL,
		JobDescription: doc.JobDescription,
		UserNotes:      doc.UserNotes,
		ResumeParts:    parts,
		Revision:       doc.Revision,
		UploadedAt:     doc.UploadedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}

func toSummary(doc Document) DocumentSummary {
	return DocumentSummary{
		ID:         doc.ID,
		FileName:   doc.FileName,
		Revision:   doc.Revision,
		UploadedAt: doc.UploadedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
}

func toEdits(in []editRequest) []model.Edit {
	out := make([]model.Edit, 0, len(in))
	for _, e := range in {
		out = append(out, model.Edit{LineNum: e.LineNum, Text: e.Text})
	}
	return out
}
