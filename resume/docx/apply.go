package docx

import (
	"bytes"
	"fmt"

	"resume-tailor/resume/model"
)

// Apply writes the given edits into a copy of the document and returns the
// new package bytes. Only the inner text of matched fragments changes; every
// other byte of word/document.xml is copied as-is. When several edits target
// the same line the last one wins. Edits whose line does not exist are
// counted as ignored.
func Apply(data []byte, edits []model.Edit) ([]byte, model.ApplyReport, error) {
	r, doc, err := openPackage(data)
	if err != nil {
		return nil, model.ApplyReport{}, err
	}
	defer r.Close()

	updated, report, err := applyXML([]byte(doc.GetContent()), edits)
	if err != nil {
		return nil, model.ApplyReport{}, err
	}
	doc.SetContent(string(updated))

	var out bytes.Buffer
	if err := doc.Write(&out); err != nil {
		return nil, model.ApplyReport{}, fmt.Errorf("write docx: %w", err)
	}
	return out.Bytes(), report, nil
}

func applyXML(documentXML []byte, edits []model.Edit) ([]byte, model.ApplyReport, error) {
	byLine := make(map[int]string, len(edits))
	for _, e := range edits {
		byLine[e.LineNum] = e.Text
	}

	var matched []fragment
	lines := 0
	err := walkFragments(documentXML, func(f fragment) {
		lines++
		if _, ok := byLine[f.line]; ok {
			matched = append(matched, f)
		}
	})
	if err != nil {
		return nil, model.ApplyReport{}, err
	}

	report := model.ApplyReport{}
	for _, e := range edits {
		if e.LineNum < 0 || e.LineNum >= lines {
			report.Ignored++
		}
	}
	report.Applied = len(matched)
	if len(matched) == 0 {
		return documentXML, report, nil
	}

	var out bytes.Buffer
	out.Grow(len(documentXML))
	last := 0
	for _, f := range matched {
		out.Write(documentXML[last:f.start])
		escaped := escapeText(byLine[f.line])
		if f.selfClosing {
			out.Write(expandSelfClosing(documentXML[f.start:f.end], escaped))
		} else {
			out.Write(escaped)
		}
		last = f.end
	}
	out.Write(documentXML[last:])
	return out.Bytes(), report, nil
}
