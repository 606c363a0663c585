package docx

import "errors"

// ErrInvalidDocument is returned when the bytes are not a readable WordprocessingML package.
var ErrInvalidDocument = errors.New("invalid docx document")
