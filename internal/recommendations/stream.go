package recommendations

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"resume-tailor/internal/recommendations/partial"
)

// PartialString is a string field seen in an unfinished stream. Stable is set
// once the closing quote has arrived; an open string is reported but never stable.
type PartialString struct {
	Value   string
	Present bool
	Stable  bool
}

// PartialRecommendation is a recommendation that may still be arriving.
// Complete is set once its object has closed.
type PartialRecommendation struct {
	LineNum   *int
	Text      PartialString
	Rationale PartialString
	Complete  bool
}

// Partial is the typed view of a stream prefix. It is never a Result; use
// Finalize once the stream has closed.
type Partial struct {
	Recommendations []PartialRecommendation
	Complete        bool
}

// CompleteCount returns how many recommendations have closed.
func (p Partial) CompleteCount() int {
	n := 0
	for _, r := range p.Recommendations {
		if r.Complete {
			n++
		}
	}
	return n
}

// ParsePartial decodes whatever prefix of the model output has arrived so far.
// Only irrecoverable syntax errors are returned; an unfinished document is not an error.
func ParsePartial(text string) (Partial, error) {
	root, err := partial.Parse(trimLeadingFence(text))
	if err != nil {
		return Partial{}, err
	}
	if root == nil {
		return Partial{}, nil
	}
	if root.Kind != partial.Object {
		return Partial{}, fmt.Errorf("%w: top-level value is not an object", partial.ErrSyntax)
	}

	out := Partial{Complete: root.Complete}
	list := lookup(root, "recommendations")
	if list == nil || list.Kind != partial.Array {
		return out, nil
	}
	for _, item := range list.Items {
		if item.Kind != partial.Object {
			continue
		}
		rec := PartialRecommendation{Complete: item.Complete}
		if n := lookup(item, "lineNum"); n != nil && n.Kind == partial.Number && n.Complete && n.Number == math.Trunc(n.Number) {
			v := int(n.Number)
			rec.LineNum = &v
		}
		rec.Text = partialString(lookup(item, "text"))
		rec.Rationale = partialString(lookup(item, "rationale"))
		out.Recommendations = append(out.Recommendations, rec)
	}
	return out, nil
}

func partialString(n *partial.Node) PartialString {
	if n == nil || n.Kind != partial.String {
		return PartialString{}
	}
	return PartialString{Value: n.Str, Present: true, Stable: n.Complete}
}

// lookup finds an object member ignoring key case; providers are not consistent about it.
func lookup(n *partial.Node, key string) *partial.Node {
	var found *partial.Node
	for _, f := range n.Fields {
		if strings.EqualFold(f.Key, key) {
			found = f.Value
		}
	}
	return found
}

// Finalize strictly parses the full model output. Recommendations with blank
// text mean "no change" and are dropped.
func Finalize(text string) (Result, error) {
	var raw struct {
		Recommendations *[]Recommendation `json:"recommendations"`
	}
	dec := json.NewDecoder(strings.NewReader(trimFence(text)))
	if err := dec.Decode(&raw); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return Result{}, fmt.Errorf("%w: trailing data after object", ErrMalformedOutput)
	}
	if raw.Recommendations == nil {
		return Result{}, fmt.Errorf("%w: missing recommendations", ErrMalformedOutput)
	}

	out := Result{Recommendations: make([]Recommendation, 0, len(*raw.Recommendations))}
	for _, r := range *raw.Recommendations {
		if strings.TrimSpace(r.Text) == "" {
			continue
		}
		out.Recommendations = append(out.Recommendations, r)
	}
	return out, nil
}

// Accumulator collects streamed chunks in arrival order.
type Accumulator struct {
	buf    strings.Builder
	chunks int
}

// Write appends a chunk.
func (a *Accumulator) Write(chunk string) {
	a.buf.WriteString(chunk)
	a.chunks++
}

// Text returns everything received so far.
func (a *Accumulator) Text() string { return a.buf.String() }

// Chunks returns the number of chunks received.
func (a *Accumulator) Chunks() int { return a.chunks }

// Snapshot parses the current prefix.
func (a *Accumulator) Snapshot() (Partial, error) { return ParsePartial(a.buf.String()) }

// Finalize strictly parses the accumulated text.
func (a *Accumulator) Finalize() (Result, error) { return Finalize(a.buf.String()) }

func trimLeadingFence(s string) string {
	s = strings.TrimLeft(s, " \t\r\n")
	for _, fence := range []string{"```json", "```"} {
		if strings.HasPrefix(s, fence) {
			return strings.TrimLeft(s[len(fence):], "\r\n")
		}
	}
	if strings.HasPrefix("```json", s) {
		return ""
	}
	return s
}

func trimFence(s string) string {
	s = trimLeadingFence(strings.TrimSpace(s))
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
