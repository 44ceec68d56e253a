package enrichment

import (
	"context"

	"medvault-backend/internal/insight"
)

// Tracker records enrichment progress against stored documents. The
// documents package provides the implementation; the narrow interface
// keeps this package free of its types.
type Tracker interface {
	// BeginOCR claims the document for extraction, moving it from pending
	// to processing. It returns false when another worker already claimed
	// it or the document is gone.
	BeginOCR(ctx context.Context, documentID string) (bool, error)
	CompleteOCR(ctx context.Context, documentID, text string, confidence float64) error
	FailOCR(ctx context.Context, documentID string) error
	CompleteAnalysis(ctx context.Context, documentID string, analysis insight.Analysis) error
	FailAnalysis(ctx context.Context, documentID string) error
}
