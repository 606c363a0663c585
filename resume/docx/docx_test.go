package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-tailor/resume/docx/docxtest"
	"resume-tailor/resume/model"
)

func buildDocx(t *testing.T, body string) []byte {
	return docxtest.Build(t, body)
}

var paragraph = docxtest.Paragraph

func tenFragments() string {
	var sb strings.Builder
	for i := 0; i < 5; i++ {
		sb.WriteString(paragraph(fmt.Sprintf("fragment number %d", i*2), fmt.Sprintf("fragment number %d", i*2+1)))
	}
	return sb.String()
}

func readPart(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		require.NoError(t, err)
		return buf.String()
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestExtractNumbersFragmentsContiguously(t *testing.T) {
	data := buildDocx(t, tenFragments())

	parts, err := Extract(data)
	require.NoError(t, err)
	require.Len(t, parts, 10)
	for i, p := range parts {
		assert.Equal(t, i, p.LineNumber)
		assert.Equal(t, fmt.Sprintf("fragment number %d", i), p.Text)
	}
}

func TestExtractIsStableAcrossReads(t *testing.T) {
	data := buildDocx(t, tenFragments())

	first, err := Extract(data)
	require.NoError(t, err)
	second, err := Extract(data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtractCountsEmptyAndSelfClosingFragments(t *testing.T) {
	body := `<w:p><w:r><w:t>first</w:t></w:r><w:r><w:t/></w:r><w:r><w:t></w:t><w:t>&amp; more</w:t></w:r></w:p>`
	parts, err := Extract(buildDocx(t, body))
	require.NoError(t, err)

	assert.Equal(t, []model.ResumePart{
		{LineNumber: 0, Text: "first"},
		{LineNumber: 1, Text: ""},
		{LineNumber: 2, Text: ""},
		{LineNumber: 3, Text: "& more"},
	}, parts)
}

func TestExtractSkipsNestedText(t *testing.T) {
	body := paragraph("top level") +
		`<w:tbl><w:tr><w:tc>` + paragraph("inside table") + `</w:tc></w:tr></w:tbl>` +
		`<w:p><w:hyperlink r:id="rId1"><w:r><w:t>inside link</w:t></w:r></w:hyperlink><w:r><w:t>after link</w:t></w:r></w:p>`

	parts, err := Extract(buildDocx(t, body))
	require.NoError(t, err)
	assert.Equal(t, []string{"top level", "after link"}, model.Texts(parts))
	assert.Equal(t, 1, parts[1].LineNumber)
}

func TestExtractEmptyBody(t *testing.T) {
	parts, err := Extract(buildDocx(t, ""))
	require.NoError(t, err)
	assert.NotNil(t, parts)
	assert.Empty(t, parts)
}

func TestExtractRejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a zip", []byte("plain text, not a package")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Extract(tc.data)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}

	t.Run("no document part", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, err := zw.Create("word/_rels/document.xml.rels")
		require.NoError(t, err)
		_, _ = w.Write([]byte("<Relationships/>"))
		require.NoError(t, zw.Close())

		_, err = Extract(buf.Bytes())
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})

	t.Run("broken xml", func(t *testing.T) {
		_, err := extractXML([]byte(docxtest.DocumentHeader + "<w:body><w:p><w:r><w:t>open"))
		assert.ErrorIs(t, err, ErrInvalidDocument)
	})
}

func TestApplyChangesOnlyTargetFragment(t *testing.T) {
	data := buildDocx(t, tenFragments())
	original := readPart(t, data, "word/document.xml")

	out, report, err := Apply(data, []model.Edit{{LineNum: 3, Text: "rewritten <line> & three"}})
	require.NoError(t, err)
	assert.Equal(t, model.ApplyReport{Applied: 1}, report)

	updated := readPart(t, out, "word/document.xml")
	expected := strings.Replace(original, ">fragment number 3<", ">rewritten &lt;line&gt; &amp; three<", 1)
	assert.Equal(t, expected, updated)

	parts, err := Extract(out)
	require.NoError(t, err)
	for i, p := range parts {
		if i == 3 {
			assert.Equal(t, "rewritten <line> & three", p.Text)
			continue
		}
		assert.Equal(t, fmt.Sprintf("fragment number %d", i), p.Text)
	}

	assert.Equal(t, readPart(t, data, "word/styles.xml"), readPart(t, out, "word/styles.xml"))
}

func TestApplyEmptyEditsKeepsText(t *testing.T) {
	data := buildDocx(t, tenFragments())

	out, report, err := Apply(data, nil)
	require.NoError(t, err)
	assert.Zero(t, report.Applied)

	before, err := Extract(data)
	require.NoError(t, err)
	after, err := Extract(out)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, readPart(t, data, "word/document.xml"), readPart(t, out, "word/document.xml"))
}

func TestApplyIsIdempotent(t *testing.T) {
	data := buildDocx(t, tenFragments())
	edits := []model.Edit{{LineNum: 0, Text: "zero"}, {LineNum: 9, Text: "nine"}}

	once, _, err := Apply(data, edits)
	require.NoError(t, err)
	twice, _, err := Apply(once, edits)
	require.NoError(t, err)

	assert.Equal(t, readPart(t, once, "word/document.xml"), readPart(t, twice, "word/document.xml"))
}

func TestApplyIgnoresOutOfRangeEdits(t *testing.T) {
	data := buildDocx(t, tenFragments())

	out, report, err := Apply(data, []model.Edit{{LineNum: -1, Text: "x"}, {LineNum: 10, Text: "y"}, {LineNum: 500, Text: "z"}})
	require.NoError(t, err)
	assert.Equal(t, model.ApplyReport{Applied: 0, Ignored: 3}, report)
	assert.Equal(t, readPart(t, data, "word/document.xml"), readPart(t, out, "word/document.xml"))
}

func TestApplyLastDuplicateWins(t *testing.T) {
	data := buildDocx(t, tenFragments())

	out, report, err := Apply(data, []model.Edit{{LineNum: 2, Text: "first"}, {LineNum: 2, Text: "second"}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)

	parts, err := Extract(out)
	require.NoError(t, err)
	assert.Equal(t, "second", parts[2].Text)
}

func TestApplyExpandsSelfClosingFragment(t *testing.T) {
	body := `<w:p><w:r><w:t>keep</w:t></w:r><w:r><w:t xml:space="preserve" /></w:r></w:p>`
	data := buildDocx(t, body)

	out, _, err := Apply(data, []model.Edit{{LineNum: 1, Text: "filled in"}})
	require.NoError(t, err)

	updated := readPart(t, out, "word/document.xml")
	assert.Contains(t, updated, `<w:t xml:space="preserve">filled in</w:t>`)

	parts, err := Extract(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep", "filled in"}, model.Texts(parts))
}

func TestExtractAcceptsDefaultNamespace(t *testing.T) {
	documentXML := `<?xml version="1.0"?><document xmlns="` + wmlNamespace + `"><body><p><r><t>unprefixed</t></r></p></body></document>`
	parts, err := extractXML([]byte(documentXML))
	require.NoError(t, err)
	assert.Equal(t, []string{"unprefixed"}, model.Texts(parts))

	out, report, err := applyXML([]byte(documentXML), []model.Edit{{LineNum: 0, Text: "changed"}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)
	assert.Contains(t, string(out), "<t>changed</t>")
}
