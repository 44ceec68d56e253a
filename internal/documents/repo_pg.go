package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"medvault-backend/internal/insight"
)

type PGRepo struct {
	DB *sql.DB
}

const reserveQuotaQuery = `
UPDATE users
SET storage_used = storage_used + $2, updated_at = now()
WHERE id = $1 AND storage_used + $2 <= storage_quota`

const releaseQuotaQuery = `
UPDATE users
SET storage_used = GREATEST(storage_used - $2, 0), updated_at = now()
WHERE id = $1`

const insertDocumentQuery = `
INSERT INTO documents (id, user_id, type, title, description, notes, storage_key, thumbnail_key, file_size, mime_type, status, ocr_status, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())`

func (r *PGRepo) CreateWithQuota(ctx context.Context, doc Document) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, reserveQuotaQuery, doc.UserID, doc.FileSize)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrQuotaExceeded
	}

	_, err = tx.ExecContext(ctx, insertDocumentQuery,
		doc.ID,
		doc.UserID,
		doc.Type,
		nullableString(doc.Title),
		nullableString(doc.Description),
		nullableString(doc.Notes),
		doc.StorageKey,
		nullableString(doc.ThumbnailKey),
		doc.FileSize,
		doc.MimeType,
		doc.Status,
		doc.OCRStatus,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

const selectDocument = `
SELECT id, user_id, type, title, description, notes, storage_key, thumbnail_key, file_size, mime_type, status, ocr_status, uploaded_at
FROM documents`

func (r *PGRepo) GetByID(ctx context.Context, userID, documentID string) (Document, error) {
	const query = selectDocument + ` WHERE id = $1 AND user_id = $2 LIMIT 1`
	return scanDocument(r.DB.QueryRowContext(ctx, query, documentID, userID))
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	const query = selectDocument + ` WHERE user_id = $1 ORDER BY uploaded_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocumentRows(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (r *PGRepo) UpdateMeta(ctx context.Context, doc Document) error {
	const query = `
UPDATE documents SET
  type = $3,
  title = $4,
  description = $5,
  notes = $6
WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Type,
		nullableString(doc.Title),
		nullableString(doc.Description),
		nullableString(doc.Notes),
	)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) DeleteWithQuota(ctx context.Context, userID, documentID string) (Document, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Document{}, err
	}
	defer tx.Rollback()

	const query = `
DELETE FROM documents
WHERE id = $1 AND user_id = $2
RETURNING id, user_id, type, title, description, notes, storage_key, thumbnail_key, file_size, mime_type, status, ocr_status, uploaded_at`
	doc, err := scanDocument(tx.QueryRowContext(ctx, query, documentID, userID))
	if err != nil {
		return Document{}, err
	}

	if _, err := tx.ExecContext(ctx, releaseQuotaQuery, userID, doc.FileSize); err != nil {
		return Document{}, err
	}
	if err := tx.Commit(); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) SetStatus(ctx context.Context, documentID, status string) error {
	const query = `UPDATE documents SET status = $2 WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, documentID, status)
	return err
}

func (r *PGRepo) ClaimOCR(ctx context.Context, documentID string) (bool, error) {
	const query = `UPDATE documents SET ocr_status = $2 WHERE id = $1 AND ocr_status = $3`
	res, err := r.DB.ExecContext(ctx, query, documentID, OCRStatusProcessing, OCRStatusPending)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *PGRepo) SetOCRStatus(ctx context.Context, documentID, status string) error {
	const query = `UPDATE documents SET ocr_status = $2 WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, documentID, status)
	return err
}

func (r *PGRepo) SaveExtractedText(ctx context.Context, documentID, text string, confidence float64) error {
	const query = `
INSERT INTO analysis_results (document_id, extracted_text, ocr_confidence, processed_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (document_id) DO UPDATE SET
  extracted_text = EXCLUDED.extracted_text,
  ocr_confidence = EXCLUDED.ocr_confidence,
  processed_at = now()`
	_, err := r.DB.ExecContext(ctx, query, documentID, text, confidence)
	return err
}

func (r *PGRepo) SaveAnalysis(ctx context.Context, documentID string, analysis insight.Analysis) error {
	insights := analysis.Insights
	if insights == nil {
		insights = []insight.Insight{}
	}
	encoded, err := json.Marshal(insights)
	if err != nil {
		return fmt.Errorf("marshal insights: %w", err)
	}
	const query = `
INSERT INTO analysis_results (document_id, extracted_text, summary, insights, processed_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (document_id) DO UPDATE SET
  extracted_text = COALESCE(EXCLUDED.extracted_text, analysis_results.extracted_text),
  summary = EXCLUDED.summary,
  insights = EXCLUDED.insights,
  processed_at = now()`
	_, err = r.DB.ExecContext(ctx, query,
		documentID,
		nullableString(analysis.ExtractedText),
		nullableString(analysis.Summary),
		encoded,
	)
	return err
}

func (r *PGRepo) GetAnalysis(ctx context.Context, userID, documentID string) (AnalysisResult, error) {
	const query = `
SELECT a.document_id, a.extracted_text, a.ocr_confidence, a.summary, a.insights, a.processed_at
FROM analysis_results a
JOIN documents d ON d.id = a.document_id
WHERE a.document_id = $1 AND d.user_id = $2
LIMIT 1`
	var result AnalysisResult
	var extractedText sql.NullString
	var confidence sql.NullFloat64
	var summary sql.NullString
	var insights []byte
	err := r.DB.QueryRowContext(ctx, query, documentID, userID).Scan(
		&result.DocumentID,
		&extractedText,
		&confidence,
		&summary,
		&insights,
		&result.ProcessedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AnalysisResult{}, ErrNotFound
		}
		return AnalysisResult{}, err
	}
	if extractedText.Valid {
		result.ExtractedText = extractedText.String
	}
	if confidence.Valid {
		value := confidence.Float64
		result.OCRConfidence = &value
	}
	if summary.Valid {
		result.Summary = summary.String
	}
	result.Insights = []insight.Insight{}
	if len(insights) > 0 {
		if err := json.Unmarshal(insights, &result.Insights); err != nil {
			return AnalysisResult{}, fmt.Errorf("unmarshal insights: %w", err)
		}
	}
	return result, nil
}

func scanDocument(row *sql.Row) (Document, error) {
	var doc Document
	var title, description, notes, thumbnailKey sql.NullString
	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Type,
		&title,
		&description,
		&notes,
		&doc.StorageKey,
		&thumbnailKey,
		&doc.FileSize,
		&doc.MimeType,
		&doc.Status,
		&doc.OCRStatus,
		&doc.UploadedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	applyNullable(&doc, title, description, notes, thumbnailKey)
	return doc, nil
}

func scanDocumentRows(rows *sql.Rows) (Document, error) {
	var doc Document
	var title, description, notes, thumbnailKey sql.NullString
	err := rows.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Type,
		&title,
		&description,
		&notes,
		&doc.StorageKey,
		&thumbnailKey,
		&doc.FileSize,
		&doc.MimeType,
		&doc.Status,
		&doc.OCRStatus,
		&doc.UploadedAt,
	)
	if err != nil {
		return Document{}, err
	}
	applyNullable(&doc, title, description, notes, thumbnailKey)
	return doc, nil
}

func applyNullable(doc *Document, title, description, notes, thumbnailKey sql.NullString) {
	if title.Valid {
		doc.Title = title.String
	}
	if description.Valid {
		doc.Description = description.String
	}
	if notes.Valid {
		doc.Notes = notes.String
	}
	if thumbnailKey.Valid {
		doc.ThumbnailKey = thumbnailKey.String
	}
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
