package docx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

const wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
const wmlStrictNamespace = "http://purl.oclc.org/ooxml/wordprocessingml/main"

// fragmentPath is the element chain from the root to a text fragment:
// w:document > w:body > w:p > w:r > w:t. Only direct children count, so
// text inside tables, hyperlinks or text boxes is not addressable.
var fragmentPath = []string{"document", "body", "p", "r", "t"}

type fragment struct {
	line int
	text string

	// start and end delimit the inner content of the element in the source
	// bytes. For a self-closing element they delimit the whole element.
	start, end  int
	selfClosing bool
}

// walkFragments decodes document.xml and calls visit for every text
// fragment in document order. Line numbers increase by one per fragment
// regardless of its content.
func walkFragments(data []byte, visit func(fragment)) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var path []string
	var cur *fragment
	var text bytes.Buffer
	line := 0

	for {
		offset := int(dec.InputOffset())
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			path = append(path, elementKey(t.Name))
			if cur == nil && onFragmentPath(path) {
				end := int(dec.InputOffset())
				cur = &fragment{line: line, start: end}
				if bytes.HasSuffix(data[offset:end], []byte("/>")) {
					cur.start = offset
					cur.end = end
					cur.selfClosing = true
				}
				text.Reset()
			}
		case xml.CharData:
			if cur != nil && len(path) == len(fragmentPath) {
				text.Write(t)
			}
		case xml.EndElement:
			if cur != nil && len(path) == len(fragmentPath) {
				if !cur.selfClosing {
					cur.end = offset
				}
				cur.text = text.String()
				visit(*cur)
				cur = nil
				line++
			}
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		}
	}

	if len(path) != 0 {
		return fmt.Errorf("%w: unexpected end of document.xml", ErrInvalidDocument)
	}
	return nil
}

func elementKey(name xml.Name) string {
	if name.Space == wmlNamespace || name.Space == wmlStrictNamespace {
		return name.Local
	}
	return ""
}

func onFragmentPath(path []string) bool {
	if len(path) != len(fragmentPath) {
		return false
	}
	for i, local := range fragmentPath {
		if path[i] != local {
			return false
		}
	}
	return true
}

// expandSelfClosing turns a raw `<w:t .../>` into an open/close pair holding escaped text.
func expandSelfClosing(raw []byte, escaped []byte) []byte {
	open := bytes.TrimRight(raw[:len(raw)-2], " \t\r\n")
	name := open[1:]
	if i := bytes.IndexAny(name, " \t\r\n"); i >= 0 {
		name = name[:i]
	}

	out := make([]byte, 0, len(open)+len(escaped)+len(name)+4)
	out = append(out, open...)
	out = append(out, '>')
	out = append(out, escaped...)
	out = append(out, "</"...)
	out = append(out, name...)
	out = append(out, '>')
	return out
}

func escapeText(s string) []byte {
	var buf bytes.Buffer
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.Bytes()
}
