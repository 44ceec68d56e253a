package ocr

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout", ErrTimeout, true},
		{"wrapped timeout", fmt.Errorf("extract: %w", ErrTimeout), true},
		{"quota", ErrQuota, false},
		{"unsupported", ErrUnsupportedFormat, false},
		{"server error", &APIError{StatusCode: 503, Message: "unavailable"}, true},
		{"client error", &APIError{StatusCode: 400, Message: "bad image"}, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsRetryable(tc.err); got != tc.want {
			t.Fatalf("%s: IsRetryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}
