package enrichment

import (
	"context"
	"fmt"
	"io"
	"time"

	"medvault-backend/internal/insight"
	"medvault-backend/internal/ocr"
	"medvault-backend/internal/shared/metrics"
	"medvault-backend/internal/shared/storage/object"
	"medvault-backend/internal/shared/telemetry"
)

// taskTimeout bounds a whole task run, covering the object fetch and the
// provider call with its internal retries.
const taskTimeout = 2 * time.Minute

// lowConfidenceThreshold is the percentage below which an extraction is
// logged for review. The result is still stored.
const lowConfidenceThreshold = 60.0

// OCRTask extracts text from one stored document image.
type OCRTask struct {
	Tracker    Tracker
	Store      object.ObjectStore
	Engine     ocr.Client
	DocumentID string
	StorageKey string
	MimeType   string
}

func (t *OCRTask) Name() string { return "ocr" }

func (t *OCRTask) Execute() {
	metrics.IncOCRStarted()
	started := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	claimed, err := t.Tracker.BeginOCR(ctx, t.DocumentID)
	if err != nil {
		telemetry.Error("ocr.claim_failed", map[string]any{"document_id": t.DocumentID, "error": err.Error()})
		metrics.IncOCRFailed()
		return
	}
	if !claimed {
		return
	}

	data, err := loadObject(ctx, t.Store, t.StorageKey)
	if err != nil {
		t.fail(ctx, started, err)
		return
	}

	result, err := t.Engine.ExtractText(ctx, data, t.MimeType)
	if err != nil && ocr.IsRetryable(err) {
		telemetry.Info("ocr.retry", map[string]any{"document_id": t.DocumentID, "error": err.Error()})
		result, err = t.Engine.ExtractText(ctx, data, t.MimeType)
	}
	if err != nil {
		t.fail(ctx, started, err)
		return
	}

	if result.Confidence < lowConfidenceThreshold {
		telemetry.Warn("ocr.low_confidence", map[string]any{
			"document_id": t.DocumentID,
			"confidence":  result.Confidence,
		})
	}
	if err := t.Tracker.CompleteOCR(ctx, t.DocumentID, result.Text, result.Confidence); err != nil {
		t.fail(ctx, started, err)
		return
	}
	metrics.IncOCRCompleted()
	metrics.ObserveOCRDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("ocr.completed", map[string]any{
		"document_id": t.DocumentID,
		"confidence":  result.Confidence,
		"chars":       len(result.Text),
	})
}

func (t *OCRTask) fail(ctx context.Context, started time.Time, cause error) {
	metrics.IncOCRFailed()
	metrics.ObserveOCRDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Error("ocr.failed", map[string]any{"document_id": t.DocumentID, "error": cause.Error()})
	if err := t.Tracker.FailOCR(ctx, t.DocumentID); err != nil {
		telemetry.Error("ocr.mark_failed_error", map[string]any{"document_id": t.DocumentID, "error": err.Error()})
	}
}

// AnalysisTask runs the language-model analysis for one stored document.
type AnalysisTask struct {
	Tracker    Tracker
	Store      object.ObjectStore
	Analyzer   insight.Client
	DocumentID string
	StorageKey string
	MimeType   string
}

func (t *AnalysisTask) Name() string { return "analysis" }

func (t *AnalysisTask) Execute() {
	metrics.IncAnalysisStarted()
	started := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	defer cancel()

	data, err := loadObject(ctx, t.Store, t.StorageKey)
	if err != nil {
		t.fail(ctx, started, err)
		return
	}

	analysis, err := t.Analyzer.Analyze(ctx, data, t.MimeType)
	if err != nil {
		t.fail(ctx, started, err)
		return
	}
	if err := t.Tracker.CompleteAnalysis(ctx, t.DocumentID, analysis); err != nil {
		t.fail(ctx, started, err)
		return
	}
	metrics.IncAnalysisCompleted()
	metrics.ObserveAnalysisDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Info("analysis.completed", map[string]any{
		"document_id": t.DocumentID,
		"insights":    len(analysis.Insights),
	})
}

func (t *AnalysisTask) fail(ctx context.Context, started time.Time, cause error) {
	metrics.IncAnalysisFailed()
	metrics.ObserveAnalysisDurationMs(float64(time.Since(started).Milliseconds()))
	telemetry.Error("analysis.failed", map[string]any{"document_id": t.DocumentID, "error": cause.Error()})
	if err := t.Tracker.FailAnalysis(ctx, t.DocumentID); err != nil {
		telemetry.Error("analysis.mark_failed_error", map[string]any{"document_id": t.DocumentID, "error": err.Error()})
	}
}

func loadObject(ctx context.Context, store object.ObjectStore, key string) ([]byte, error) {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("open object %s: %w", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}
