// Package ocr extracts text from uploaded document images.
package ocr

import "context"

// Result is the outcome of a text extraction pass.
type Result struct {
	// Text is the full extracted text, empty when the image contains none.
	Text string
	// Confidence is the mean per-word confidence as a percentage. An image
	// with no detected text reports 100.
	Confidence float64
	// Language is the dominant detected language code, when reported.
	Language string
}

type Client interface {
	ExtractText(ctx context.Context, data []byte, mimeType string) (Result, error)
}
