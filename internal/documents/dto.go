package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
// Storage keys are included so clients can request the backing objects
// through whatever access layer fronts the store.
type DocumentResponse struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Title        string    `json:"title,omitempty"`
	Description  string    `json:"description,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	StorageKey   string    `json:"storageKey"`
	ThumbnailKey string    `json:"thumbnailKey,omitempty"`
	FileSize     int64     `json:"fileSize"`
	MimeType     string    `json:"mimeType"`
	Status       string    `json:"status"`
	OCRStatus    string    `json:"ocrStatus,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		ID:           doc.ID,
		Type:         doc.Type,
		Title:        doc.Title,
		Description:  doc.Description,
		Notes:        doc.Notes,
		StorageKey:   doc.StorageKey,
		ThumbnailKey: doc.ThumbnailKey,
		FileSize:     doc.FileSize,
		MimeType:     doc.MimeType,
		Status:       doc.Status,
		OCRStatus:    doc.OCRStatus,
		UploadedAt:   doc.UploadedAt,
	}
}

func toResponses(docs []Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toResponse(doc))
	}
	return out
}
