package documents

import (
	"context"

	"medvault-backend/internal/insight"
)

// DocumentsRepo defines persistence operations for documents and their
// enrichment results. All reads are scoped to the owning user.
type DocumentsRepo interface {
	// CreateWithQuota inserts the document and reserves its size against
	// the owner's storage quota in one atomic step, failing with
	// ErrQuotaExceeded when the reservation would overrun the quota.
	CreateWithQuota(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, documentID string) (Document, error)
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	// UpdateMeta rewrites the editable metadata fields.
	UpdateMeta(ctx context.Context, doc Document) error
	// DeleteWithQuota removes the document and releases its size from the
	// owner's usage counter, returning the deleted row so the caller can
	// clean up stored objects.
	DeleteWithQuota(ctx context.Context, userID, documentID string) (Document, error)

	SetStatus(ctx context.Context, documentID, status string) error
	// ClaimOCR moves ocr_status from pending to processing, returning
	// false when the document was already claimed or removed.
	ClaimOCR(ctx context.Context, documentID string) (bool, error)
	SetOCRStatus(ctx context.Context, documentID, status string) error

	// SaveExtractedText upserts the OCR output, leaving any existing
	// summary and insights in place.
	SaveExtractedText(ctx context.Context, documentID, text string, confidence float64) error
	// SaveAnalysis upserts the language-model output, leaving any existing
	// extracted text in place unless the analysis carries its own.
	SaveAnalysis(ctx context.Context, documentID string, analysis insight.Analysis) error
	GetAnalysis(ctx context.Context, userID, documentID string) (AnalysisResult, error)
}
