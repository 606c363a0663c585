package recommendations

import (
	"encoding/json"
	"unicode/utf8"
)

// mockChunkRunes is the size of each streamed mock chunk.
const mockChunkRunes = 24

var mockRecommendations = []Recommendation{
	{LineNum: 2, Text: "Optimized SQL queries reducing page‑load time by 35%.", Rationale: "Quantifies performance impact."},
	{LineNum: 4, Text: "Integrated CI/CD pipeline with GitHub Actions.", Rationale: "Shows automation experience."},
	{LineNum: 6, Text: "Migrated legacy APIs to .NET 8 increasing reliability.", Rationale: "Highlights modernization skills."},
	{LineNum: 8, Text: "Implemented feature‑flag system enabling safe rollouts.", Rationale: "Demonstrates risk mitigation."},
	{LineNum: 10, Text: "Reduced AWS costs by 28% via right‑sizing instances.", Rationale: "Displays cost awareness."},
	{LineNum: 12, Text: "Built real‑time notifications with WebSockets.", Rationale: "Emphasizes user experience."},
	{LineNum: 14, Text: "Added Sentry error tracking cutting mean‑time‑to‑detect.", Rationale: "Shows quality focus."},
	{LineNum: 16, Text: "Refactored React codebase to TanStack Query.", Rationale: "Highlights modern front‑end patterns."},
	{LineNum: 18, Text: "Led accessibility audit achieving WCAG 2.1 AA.", Rationale: "Illustrates inclusivity commitment."},
	{LineNum: 20, Text: "Developed Slack bot to automate on‑call rotations.", Rationale: "Shows DevOps initiative."},
	{LineNum: 22, Text: "Implemented domain‑driven design in new services.", Rationale: "Demonstrates architectural rigor."},
	{LineNum: 24, Text: "Conducted load testing to 10k RPS with k6.", Rationale: "Indicates scalability validation."},
	{LineNum: 26, Text: "Introduced GraphQL gateway unifying data access.", Rationale: "Shows API design expertise."},
	{LineNum: 28, Text: "Created design‑system library with Storybook.", Rationale: "Highlights UI consistency."},
	{LineNum: 30, Text: "Configured Azure AD SSO improving security posture.", Rationale: "Displays security knowledge."},
	{LineNum: 32, Text: "Mentored three junior engineers through code reviews.", Rationale: "Shows leadership."},
	{LineNum: 34, Text: "Implemented feature analytics with PostHog.", Rationale: "Demonstrates data‑driven approach."},
	{LineNum: 36, Text: "Optimized images with AVIF reducing bundle size 15%.", Rationale: "Quantifies front‑end optimization."},
	{LineNum: 38, Text: "Automated infra provisioning with Terraform.", Rationale: "Highlights IaC skills."},
	{LineNum: 40, Text: "Wrote ADRs establishing decision‑making history.", Rationale: "Shows documentation discipline."},
}

// MockResult returns the fixed recommendation set served in mock mode.
func MockResult() Result {
	out := make([]Recommendation, len(mockRecommendations))
	copy(out, mockRecommendations)
	return Result{Recommendations: out}
}

// MockChunks returns the mock result as JSON text split into small chunks on rune boundaries.
func MockChunks() []string {
	raw, err := json.Marshal(MockResult())
	if err != nil {
		panic(err)
	}
	return splitRunes(string(raw), mockChunkRunes)
}

func splitRunes(s string, size int) []string {
	var chunks []string
	for len(s) > 0 {
		end, n := 0, 0
		for end < len(s) && n < size {
			_, w := utf8.DecodeRuneInString(s[end:])
			end += w
			n++
		}
		chunks = append(chunks, s[:end])
		s = s[end:]
	}
	return chunks
}
