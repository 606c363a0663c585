// Package docxtest builds minimal WordprocessingML packages for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

// DocumentHeader opens a w:document element with the main namespace bound to "w".
const DocumentHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`

// Package zips body into a package with the parts Word and the docx library expect.
func Package(body string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := []struct{ name, content string }{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`},
		{"word/_rels/document.xml.rels", `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`},
		{"word/document.xml", DocumentHeader + "<w:body>" + body + "</w:body></w:document>"},
		{"word/styles.xml", `<?xml version="1.0" encoding="UTF-8"?><w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(f.content)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Build is Package for tests.
func Build(t testing.TB, body string) []byte {
	t.Helper()
	data, err := Package(body)
	if err != nil {
		t.Fatalf("build docx: %v", err)
	}
	return data
}

// Paragraph renders one w:p with a run per text.
func Paragraph(texts ...string) string {
	var sb strings.Builder
	sb.WriteString("<w:p><w:pPr><w:spacing w:after=\"0\"/></w:pPr>")
	for _, text := range texts {
		sb.WriteString(`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
		sb.WriteString(text)
		sb.WriteString("</w:t></w:r>")
	}
	sb.WriteString("</w:p>")
	return sb.String()
}
