package recommendations

// Recommendation is one suggested rewrite of a resume line.
type Recommendation struct {
	LineNum   int    `json:"lineNum"`
	Text      string `json:"text"`
	Rationale string `json:"rationale"`
}

// Result is the finalized model output.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`
}
