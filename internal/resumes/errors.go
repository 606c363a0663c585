package resumes

import "errors"

var (
	// ErrNotFound is returned when a document does not exist for the caller.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput wraps request validation failures. The wrapped message is user-facing.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConflict is returned when a supplied revision is stale.
	ErrConflict = errors.New("document revision conflict")
)

// inputError carries a user-facing validation message and matches ErrInvalidInput.
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(msg string) error {
	return &inputError{msg: msg}
}
