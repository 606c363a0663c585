package model

// ResumePart is one addressable text fragment of a resume, keyed by its
// zero-based position in document order.
type ResumePart struct {
	LineNumber int    `json:"lineNumber"`
	Text       string `json:"text"`
}

// Edit replaces the text of the fragment at LineNum.
type Edit struct {
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
}

// ApplyReport summarises what an apply pass did with the submitted edits.
type ApplyReport struct {
	Applied int `json:"appliedCount"`
	Ignored int `json:"ignoredCount"`
}

// Texts returns the fragment texts in line order.
func Texts(parts []ResumePart) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, p.Text)
	}
	return out
}
