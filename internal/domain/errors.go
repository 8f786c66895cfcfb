package domain

import "errors"

var (
	// ErrJobNotFound is returned when a job cannot be found in the store
	ErrJobNotFound = errors.New("job not found")

	// ErrJobAlreadyClaimed is returned when attempting to claim a job that's already claimed
	ErrJobAlreadyClaimed = errors.New("job already claimed or not in PENDING status")

	// ErrInvalidParameters is returned when a caller-supplied parameter falls
	// outside its declared enumeration or range
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrUnsupportedFormat is returned when an engine is asked for a target
	// format it does not implement
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrEncodingFailed is returned when the external tool or library reported
	// an error during transformation
	ErrEncodingFailed = errors.New("encoding failed")

	// ErrInvalidPayload is returned when a job's stored parameters cannot be decoded
	ErrInvalidPayload = errors.New("invalid job payload")
)

// RetryableError wraps transient errors that should trigger a requeue
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "retryable error: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// NewRetryableError creates a new retryable error
func NewRetryableError(err error) error {
	return &RetryableError{Err: err}
}
