package recommendations

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-tailor/internal/recommendations/partial"
)

const sampleOutput = `{"recommendations":[{"lineNum":3,"text":"Designed Go microservices on AWS","rationale":"Matches \"Go\" and \"AWS\""},{"lineNum":7,"text":"","rationale":"no change"}]}`

func TestParsePartialReportsProgress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, p Partial)
	}{
		{
			name:  "empty",
			input: "",
			check: func(t *testing.T, p Partial) {
				assert.Empty(t, p.Recommendations)
				assert.False(t, p.Complete)
			},
		},
		{
			name:  "open key is not reported",
			input: `{"recommendations":[{"lineNum":3,"tex`,
			check: func(t *testing.T, p Partial) {
				require.Len(t, p.Recommendations, 1)
				r := p.Recommendations[0]
				require.NotNil(t, r.LineNum)
				assert.Equal(t, 3, *r.LineNum)
				assert.False(t, r.Text.Present)
				assert.False(t, r.Complete)
			},
		},
		{
			name:  "open string is partial and unstable",
			input: `{"recommendations":[{"lineNum":3,"text":"Designed Go micro`,
			check: func(t *testing.T, p Partial) {
				r := p.Recommendations[0]
				assert.True(t, r.Text.Present)
				assert.False(t, r.Text.Stable)
				assert.Equal(t, "Designed Go micro", r.Text.Value)
				assert.False(t, r.Rationale.Present)
			},
		},
		{
			name:  "unterminated number is held back",
			input: `{"recommendations":[{"lineNum":1`,
			check: func(t *testing.T, p Partial) {
				require.Len(t, p.Recommendations, 1)
				assert.Nil(t, p.Recommendations[0].LineNum)
			},
		},
		{
			name:  "closed item is complete",
			input: sampleOutput[:strings.Index(sampleOutput, `},{`)+1],
			check: func(t *testing.T, p Partial) {
				require.Len(t, p.Recommendations, 1)
				r := p.Recommendations[0]
				assert.True(t, r.Complete)
				assert.True(t, r.Text.Stable)
				assert.True(t, r.Rationale.Stable)
				assert.Equal(t, `Matches "Go" and "AWS"`, r.Rationale.Value)
				assert.Equal(t, 1, p.CompleteCount())
			},
		},
		{
			name:  "leading code fence",
			input: "```json\n{\"recommendations\":[{\"lineNum\":2}",
			check: func(t *testing.T, p Partial) {
				require.Len(t, p.Recommendations, 1)
				assert.True(t, p.Recommendations[0].Complete)
			},
		},
		{
			name:  "partial fence",
			input: "``",
			check: func(t *testing.T, p Partial) {
				assert.Empty(t, p.Recommendations)
			},
		},
		{
			name:  "whole document",
			input: sampleOutput,
			check: func(t *testing.T, p Partial) {
				assert.True(t, p.Complete)
				assert.Equal(t, 2, p.CompleteCount())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePartial(tt.input)
			require.NoError(t, err)
			tt.check(t, p)
		})
	}
}

func TestParsePartialRejectsNonObject(t *testing.T) {
	_, err := ParsePartial(`[1,2`)
	assert.ErrorIs(t, err, partial.ErrSyntax)

	_, err = ParsePartial(`{"recommendations" 1`)
	assert.ErrorIs(t, err, partial.ErrSyntax)
}

func TestParsePartialNeverFailsOnPrefixes(t *testing.T) {
	for i := 0; i <= len(sampleOutput); i++ {
		if !utf8.ValidString(sampleOutput[:i]) {
			continue
		}
		_, err := ParsePartial(sampleOutput[:i])
		require.NoError(t, err, "prefix %d: %q", i, sampleOutput[:i])
	}
}

func TestFinalizeDropsBlankText(t *testing.T) {
	res, err := Finalize(sampleOutput)
	require.NoError(t, err)
	assert.Equal(t, []Recommendation{{
		LineNum:   3,
		Text:      "Designed Go microservices on AWS",
		Rationale: `Matches "Go" and "AWS"`,
	}}, res.Recommendations)
}

func TestFinalizeAcceptsFencesAndKeyCase(t *testing.T) {
	res, err := Finalize("```json\n{\"Recommendations\":[{\"LineNum\":5,\"Text\":\"Shipped\",\"Rationale\":\"r\"}]}\n```")
	require.NoError(t, err)
	assert.Equal(t, []Recommendation{{LineNum: 5, Text: "Shipped", Rationale: "r"}}, res.Recommendations)
}

func TestFinalizeRejectsMalformedOutput(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"truncated":      sampleOutput[:40],
		"trailing data":  sampleOutput + "}",
		"missing list":   `{"items":[]}`,
		"wrong type":     `{"recommendations":{"lineNum":1}}`,
		"fractional num": `{"recommendations":[{"lineNum":1.5,"text":"x"}]}`,
		"prose":          "Sure! Here are your recommendations.",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Finalize(input)
			assert.ErrorIs(t, err, ErrMalformedOutput)
		})
	}
}

func TestFinalizeEmptyListIsValid(t *testing.T) {
	res, err := Finalize(`{"recommendations":[]}`)
	require.NoError(t, err)
	assert.NotNil(t, res.Recommendations)
	assert.Empty(t, res.Recommendations)
}

func TestAccumulatorFinalizesConcatenation(t *testing.T) {
	var acc Accumulator
	for _, chunk := range splitRunes(sampleOutput, 7) {
		acc.Write(chunk)
	}
	assert.Equal(t, sampleOutput, acc.Text())
	assert.Greater(t, acc.Chunks(), 1)

	direct, err := Finalize(sampleOutput)
	require.NoError(t, err)
	streamed, err := acc.Finalize()
	require.NoError(t, err)
	assert.Equal(t, direct, streamed)
}

func TestMockChunksRebuildMockResult(t *testing.T) {
	chunks := MockChunks()
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.True(t, utf8.ValidString(c), "chunk split a rune: %q", c)
	}

	res, err := Finalize(strings.Join(chunks, ""))
	require.NoError(t, err)
	assert.Equal(t, MockResult(), res)
	assert.Len(t, res.Recommendations, 20)
	assert.Equal(t, 2, res.Recommendations[0].LineNum)
	assert.Equal(t, 40, res.Recommendations[19].LineNum)
}
