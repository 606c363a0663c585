package docx

import "resume-tailor/resume/model"

// Extract returns the addressable text fragments of a .docx in document order.
// A document without body text yields an empty, non-nil slice.
func Extract(data []byte) ([]model.ResumePart, error) {
	documentXML, err := DocumentXML(data)
	if err != nil {
		return nil, err
	}
	return extractXML(documentXML)
}

func extractXML(documentXML []byte) ([]model.ResumePart, error) {
	parts := []model.ResumePart{}
	err := walkFragments(documentXML, func(f fragment) {
		parts = append(parts, model.ResumePart{LineNumber: f.line, Text: f.text})
	})
	if err != nil {
		return nil, err
	}
	return parts, nil
}
