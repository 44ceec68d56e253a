package documents

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"medvault-backend/internal/insight"
	"medvault-backend/internal/users"
)

// MemoryRepo keeps documents in memory for development and tests. Quota
// counters live on the users repo so both backends share one accounting
// path.
type MemoryRepo struct {
	mu       sync.RWMutex
	docs     map[string]Document
	analyses map[string]AnalysisResult
	Users    users.Repo
}

func NewMemoryRepo(usersRepo users.Repo) *MemoryRepo {
	return &MemoryRepo{
		docs:     make(map[string]Document),
		analyses: make(map[string]AnalysisResult),
		Users:    usersRepo,
	}
}

func (r *MemoryRepo) CreateWithQuota(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.Users.ReserveStorage(ctx, doc.UserID, doc.FileSize); err != nil {
		if errors.Is(err, users.ErrQuotaExceeded) {
			return ErrQuotaExceeded
		}
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	r.docs[doc.ID] = doc
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[documentID]
	if !ok || doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := make([]Document, 0)
	for _, doc := range r.docs {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}

func (r *MemoryRepo) UpdateMeta(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.docs[doc.ID]
	if !ok || existing.UserID != doc.UserID {
		return ErrNotFound
	}
	existing.Type = doc.Type
	existing.Title = doc.Title
	existing.Description = doc.Description
	existing.Notes = doc.Notes
	r.docs[doc.ID] = existing
	return nil
}

func (r *MemoryRepo) DeleteWithQuota(ctx context.Context, userID, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	doc, ok := r.docs[documentID]
	if !ok || doc.UserID != userID {
		r.mu.Unlock()
		return Document{}, ErrNotFound
	}
	delete(r.docs, documentID)
	delete(r.analyses, documentID)
	r.mu.Unlock()

	if err := r.Users.ReleaseStorage(ctx, userID, doc.FileSize); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (r *MemoryRepo) SetStatus(ctx context.Context, documentID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[documentID]
	if !ok {
		return nil
	}
	doc.Status = status
	r.docs[documentID] = doc
	return nil
}

func (r *MemoryRepo) ClaimOCR(ctx context.Context, documentID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[documentID]
	if !ok || doc.OCRStatus != OCRStatusPending {
		return false, nil
	}
	doc.OCRStatus = OCRStatusProcessing
	r.docs[documentID] = doc
	return true, nil
}

func (r *MemoryRepo) SetOCRStatus(ctx context.Context, documentID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[documentID]
	if !ok {
		return nil
	}
	doc.OCRStatus = status
	r.docs[documentID] = doc
	return nil
}

func (r *MemoryRepo) SaveExtractedText(ctx context.Context, documentID, text string, confidence float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	result := r.analyses[documentID]
	result.DocumentID = documentID
	result.ExtractedText = text
	result.OCRConfidence = &confidence
	result.ProcessedAt = time.Now().UTC()
	r.analyses[documentID] = result
	return nil
}

func (r *MemoryRepo) SaveAnalysis(ctx context.Context, documentID string, analysis insight.Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	result := r.analyses[documentID]
	result.DocumentID = documentID
	if analysis.ExtractedText != "" {
		result.ExtractedText = analysis.ExtractedText
	}
	result.Summary = analysis.Summary
	if analysis.Insights != nil {
		result.Insights = analysis.Insights
	} else {
		result.Insights = []insight.Insight{}
	}
	result.ProcessedAt = time.Now().UTC()
	r.analyses[documentID] = result
	return nil
}

func (r *MemoryRepo) GetAnalysis(ctx context.Context, userID, documentID string) (AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return AnalysisResult{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[documentID]
	if !ok || doc.UserID != userID {
		return AnalysisResult{}, ErrNotFound
	}
	result, ok := r.analyses[documentID]
	if !ok {
		return AnalysisResult{}, ErrNotFound
	}
	if result.Insights == nil {
		result.Insights = []insight.Insight{}
	}
	return result, nil
}
