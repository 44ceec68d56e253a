package ocr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat marks inputs the engine cannot read, such as PDFs.
	ErrUnsupportedFormat = errors.New("unsupported format for text extraction")
	// ErrTimeout marks an extraction that exceeded its deadline.
	ErrTimeout = errors.New("text extraction timed out")
	// ErrQuota marks a provider quota or rate-limit rejection.
	ErrQuota = errors.New("text extraction quota exhausted")
)

// APIError wraps a provider HTTP failure, keeping the status code so
// callers can decide whether a retry is worthwhile.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ocr api error (status %d): %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether retrying the extraction could succeed.
// Timeouts and provider 5xx responses are transient. Unsupported formats
// and quota rejections are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) {
		return true
	}
	if errors.Is(err, ErrUnsupportedFormat) || errors.Is(err, ErrQuota) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return false
}
