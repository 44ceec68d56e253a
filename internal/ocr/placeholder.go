package ocr

import (
	"context"
	"fmt"

	"medvault-backend/internal/thumbnail"
)

// Placeholder stands in when no Vision API key is configured. It keeps the
// enrichment pipeline exercisable in development without calling out.
type Placeholder struct{}

func (Placeholder) ExtractText(ctx context.Context, data []byte, mimeType string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !thumbnail.IsImage(mimeType) {
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	return Result{Text: "", Confidence: 100}, nil
}
