package recommendations

import (
	"errors"

	"resume-tailor/internal/quota"
)

// ErrMalformedOutput indicates the model's full output did not parse into a Result.
var ErrMalformedOutput = errors.New("malformed model output")

// QuotaError is returned by Begin when the gate rejects the request. It
// carries the status needed to render the 402 response.
type QuotaError struct {
	Status quota.Status
}

func (e *QuotaError) Error() string { return quota.ErrQuotaExhausted.Error() }

func (e *QuotaError) Unwrap() error { return quota.ErrQuotaExhausted }
