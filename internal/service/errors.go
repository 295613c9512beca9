package service

import "errors"

// Error classes the handlers translate into HTTP responses. Everything else
// that escapes a service is an internal error and is reported to the caller
// without provider detail.
var (
	ErrValidation        = errors.New("validation error")
	ErrExtraction        = errors.New("extraction error")
	ErrNotFound          = errors.New("not found")
	ErrProviderExhausted = errors.New("all providers failed")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
