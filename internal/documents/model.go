package documents

import (
	"time"

	"medvault-backend/internal/insight"
)

// Document represents an uploaded medical record owned by a user.
type Document struct {
	ID           string    `json:"id"`
	UserID       string    `json:"-"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Notes        string    `json:"notes"`
	StorageKey   string    `json:"-"`
	ThumbnailKey string    `json:"-"`
	FileSize     int64     `json:"fileSize"`
	MimeType     string    `json:"mimeType"`
	Status       string    `json:"status"`
	OCRStatus    string    `json:"ocrStatus,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// Processing statuses for a document as a whole.
const (
	StatusPendingProcessing = "pending_processing"
	StatusProcessed         = "processed"
	StatusFailed            = "failed"
)

// Text extraction statuses. The empty string means extraction does not
// apply to the document, such as a PDF upload.
const (
	OCRStatusNone       = ""
	OCRStatusPending    = "pending"
	OCRStatusProcessing = "processing"
	OCRStatusCompleted  = "completed"
	OCRStatusFailed     = "failed"
)

// Document types recognized by the API. Anything else is rejected.
const (
	TypeLabReport    = "lab_report"
	TypePrescription = "prescription"
	TypeCertificate  = "certificate"
	TypeXRay         = "x_ray"
	TypeCTScan       = "ct_scan"
	TypeMRI          = "mri"
	TypeOther        = "other"
)

// ValidType reports whether the document type is one the API accepts.
func ValidType(docType string) bool {
	switch docType {
	case TypeLabReport, TypePrescription, TypeCertificate, TypeXRay, TypeCTScan, TypeMRI, TypeOther:
		return true
	default:
		return false
	}
}

// AnalysisResult holds the enrichment output for a document. OCR and the
// language-model analysis write different fields; each write keeps the
// other's columns intact.
type AnalysisResult struct {
	DocumentID    string            `json:"documentId"`
	ExtractedText string            `json:"extractedText"`
	OCRConfidence *float64          `json:"ocrConfidence,omitempty"`
	Summary       string            `json:"summary"`
	Insights      []insight.Insight `json:"insights"`
	ProcessedAt   time.Time         `json:"processedAt"`
}
