package docx

import (
	"bytes"
	"fmt"

	docxlib "github.com/nguyenthenguyen/docx"
)

// ContentType is the media type of a WordprocessingML package.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// openPackage reads a .docx held in memory and returns the editable package.
// The caller must close the returned reader.
func openPackage(data []byte) (*docxlib.ReplaceDocx, *docxlib.Docx, error) {
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%w: empty file", ErrInvalidDocument)
	}
	r, err := docxlib.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return r, r.Editable(), nil
}

// DocumentXML returns the raw word/document.xml part of a .docx.
func DocumentXML(data []byte) ([]byte, error) {
	r, doc, err := openPackage(data)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return []byte(doc.GetContent()), nil
}
