package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medvault-backend/internal/enrichment"
	"medvault-backend/internal/insight"
	"medvault-backend/internal/ocr"
	"medvault-backend/internal/shared/telemetry"
	"medvault-backend/internal/shared/util"
	"medvault-backend/internal/users"
)

// MaxFileSize is the per-document upload ceiling.
const MaxFileSize = 5 << 20 // 5MB

var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/gif":       true,
	"application/pdf": true,
}

// Service contains business logic for documents and doubles as the
// progress tracker for background enrichment.
type Service struct {
	Repo     DocumentsRepo
	Users    users.Repo
	Gateway  *Gateway
	Pool     *enrichment.Pool
	Engine   ocr.Client
	Analyzer insight.Client
}

// UploadInput carries one multipart upload after the handler has read it.
type UploadInput struct {
	FileName       string
	Data           []byte
	MimeType       string
	Type           string
	Title          string
	Description    string
	Notes          string
	ProcessWithOCR bool
	ProcessWithAI  bool
}

// Upload validates and stores a document, then queues the requested
// enrichment. The caller gets the stored record back before any
// enrichment runs.
func (s *Service) Upload(ctx context.Context, userID string, in UploadInput) (Document, error) {
	if in.FileName == "" || len(in.Data) == 0 {
		return Document{}, ErrInvalidInput
	}
	if len(in.Data) > MaxFileSize {
		return Document{}, fmt.Errorf("%w: file size %s exceeds the %s limit",
			ErrFileTooLarge, util.FormatMB(int64(len(in.Data))), util.FormatMB(MaxFileSize))
	}
	if !allowedMimeTypes[strings.ToLower(in.MimeType)] {
		return Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, in.MimeType)
	}
	docType := in.Type
	if docType == "" {
		docType = TypeOther
	}
	if !ValidType(docType) {
		return Document{}, fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, in.Type)
	}

	owner, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return Document{}, err
	}
	if owner.StorageUsed+int64(len(in.Data)) > owner.StorageQuota {
		return Document{}, quotaError(owner)
	}

	stored, err := s.Gateway.Upload(ctx, userID, in.FileName, in.Data)
	if err != nil {
		return Document{}, err
	}

	ocrStatus := OCRStatusNone
	if in.ProcessWithOCR {
		ocrStatus = OCRStatusPending
	}
	doc := Document{
		ID:           uuid.NewString(),
		UserID:       userID,
		Type:         docType,
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Notes:        strings.TrimSpace(in.Notes),
		StorageKey:   stored.StorageKey,
		ThumbnailKey: stored.ThumbnailKey,
		FileSize:     stored.Size,
		MimeType:     stored.MimeType,
		Status:       StatusPendingProcessing,
		OCRStatus:    ocrStatus,
		UploadedAt:   time.Now().UTC(),
	}

	if err := s.Repo.CreateWithQuota(ctx, doc); err != nil {
		// The object landed before the transaction, so clean it up rather
		// than leave it orphaned.
		if delErr := s.Gateway.Delete(ctx, stored.StorageKey, stored.ThumbnailKey); delErr != nil {
			telemetry.Error("documents.orphan_cleanup_failed", map[string]any{
				"storage_key": stored.StorageKey,
				"error":       delErr.Error(),
			})
		}
		if errors.Is(err, ErrQuotaExceeded) {
			return Document{}, quotaError(owner)
		}
		return Document{}, err
	}

	s.enqueue(doc, in.ProcessWithOCR, in.ProcessWithAI)
	return doc, nil
}

func quotaError(owner users.User) error {
	remaining := owner.StorageQuota - owner.StorageUsed
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Errorf("%w: %s remaining of %s",
		ErrQuotaExceeded, util.FormatMB(remaining), util.FormatMB(owner.StorageQuota))
}

func (s *Service) enqueue(doc Document, withOCR, withAI bool) {
	if s.Pool == nil {
		return
	}
	if withOCR {
		s.Pool.Submit(&enrichment.OCRTask{
			Tracker:    s,
			Store:      s.Gateway.Store,
			Engine:     s.Engine,
			DocumentID: doc.ID,
			StorageKey: doc.StorageKey,
			MimeType:   doc.MimeType,
		})
	}
	if withAI {
		s.Pool.Submit(&enrichment.AnalysisTask{
			Tracker:    s,
			Store:      s.Gateway.Store,
			Analyzer:   s.Analyzer,
			DocumentID: doc.ID,
			StorageKey: doc.StorageKey,
			MimeType:   doc.MimeType,
		})
	}
}

func (s *Service) Get(ctx context.Context, userID, documentID string) (Document, error) {
	return s.Repo.GetByID(ctx, userID, documentID)
}

func (s *Service) List(ctx context.Context, userID string) ([]Document, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// UpdateInput carries a partial metadata edit. Nil fields are untouched.
type UpdateInput struct {
	Type        *string
	Title       *string
	Description *string
	Notes       *string
}

func (in UpdateInput) empty() bool {
	return in.Type == nil && in.Title == nil && in.Description == nil && in.Notes == nil
}

// Update applies the provided fields. An empty update returns the current
// state without writing.
func (s *Service) Update(ctx context.Context, userID, documentID string, in UpdateInput) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, userID, documentID)
	if err != nil {
		return Document{}, err
	}
	if in.empty() {
		return doc, nil
	}
	if in.Type != nil {
		if !ValidType(*in.Type) {
			return Document{}, fmt.Errorf("%w: unknown document type %q", ErrInvalidInput, *in.Type)
		}
		doc.Type = *in.Type
	}
	if in.Title != nil {
		doc.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		doc.Description = strings.TrimSpace(*in.Description)
	}
	if in.Notes != nil {
		doc.Notes = strings.TrimSpace(*in.Notes)
	}
	if err := s.Repo.UpdateMeta(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Delete removes the stored objects and the record, releasing the
// document's size from the owner's quota.
func (s *Service) Delete(ctx context.Context, userID, documentID string) error {
	doc, err := s.Repo.GetByID(ctx, userID, documentID)
	if err != nil {
		return err
	}
	if err := s.Gateway.Delete(ctx, doc.StorageKey, doc.ThumbnailKey); err != nil {
		return err
	}
	if _, err := s.Repo.DeleteWithQuota(ctx, userID, documentID); err != nil {
		return err
	}
	return nil
}

// Analysis returns the enrichment result for an owned document.
func (s *Service) Analysis(ctx context.Context, userID, documentID string) (AnalysisResult, error) {
	return s.Repo.GetAnalysis(ctx, userID, documentID)
}

// StorageInfo reports quota usage from the stored counters.
type StorageInfo struct {
	Used           int64   `json:"used"`
	Quota          int64   `json:"quota"`
	Remaining      int64   `json:"remaining"`
	UsedPercentage float64 `json:"usedPercentage"`
}

func (s *Service) StorageInfo(ctx context.Context, userID string) (StorageInfo, error) {
	owner, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return StorageInfo{}, err
	}
	info := StorageInfo{
		Used:      owner.StorageUsed,
		Quota:     owner.StorageQuota,
		Remaining: owner.StorageQuota - owner.StorageUsed,
	}
	if info.Remaining < 0 {
		info.Remaining = 0
	}
	if owner.StorageQuota > 0 {
		info.UsedPercentage = float64(owner.StorageUsed) / float64(owner.StorageQuota) * 100
	}
	return info, nil
}

// BeginOCR implements enrichment.Tracker.
func (s *Service) BeginOCR(ctx context.Context, documentID string) (bool, error) {
	return s.Repo.ClaimOCR(ctx, documentID)
}

// CompleteOCR implements enrichment.Tracker.
func (s *Service) CompleteOCR(ctx context.Context, documentID, text string, confidence float64) error {
	if err := s.Repo.SaveExtractedText(ctx, documentID, text, confidence); err != nil {
		return err
	}
	return s.Repo.SetOCRStatus(ctx, documentID, OCRStatusCompleted)
}

// FailOCR implements enrichment.Tracker.
func (s *Service) FailOCR(ctx context.Context, documentID string) error {
	return s.Repo.SetOCRStatus(ctx, documentID, OCRStatusFailed)
}

// CompleteAnalysis implements enrichment.Tracker.
func (s *Service) CompleteAnalysis(ctx context.Context, documentID string, analysis insight.Analysis) error {
	if err := s.Repo.SaveAnalysis(ctx, documentID, analysis); err != nil {
		return err
	}
	return s.Repo.SetStatus(ctx, documentID, StatusProcessed)
}

// FailAnalysis implements enrichment.Tracker.
func (s *Service) FailAnalysis(ctx context.Context, documentID string) error {
	return s.Repo.SetStatus(ctx, documentID, StatusFailed)
}
