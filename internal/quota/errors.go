package quota

import "errors"

// ErrQuotaExhausted indicates the user has no generations left in the current window.
var ErrQuotaExhausted = errors.New("quota exhausted")
