package documents

import (
	"bytes"
	"context"

	"medvault-backend/internal/shared/storage/object"
	"medvault-backend/internal/shared/telemetry"
	"medvault-backend/internal/thumbnail"
)

// StoredObject describes a document file after it has been persisted.
type StoredObject struct {
	StorageKey   string
	ThumbnailKey string
	Size         int64
	MimeType     string
}

// Gateway persists document files and their thumbnails to object storage.
type Gateway struct {
	Store object.ObjectStore
}

// Upload stores the file and, for images, a JPEG thumbnail alongside it.
// A thumbnail failure is logged and skipped; the document upload itself
// still succeeds.
func (g *Gateway) Upload(ctx context.Context, userID, fileName string, data []byte) (StoredObject, error) {
	storageKey, size, mimeType, err := g.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return StoredObject{}, err
	}

	stored := StoredObject{StorageKey: storageKey, Size: size, MimeType: mimeType}
	if !thumbnail.IsImage(mimeType) {
		return stored, nil
	}

	thumb, err := thumbnail.Generate(data)
	if err != nil {
		telemetry.Warn("storage.thumbnail_failed", map[string]any{
			"storage_key": storageKey,
			"error":       err.Error(),
		})
		return stored, nil
	}
	thumbKey := "thumbnails/" + storageKey
	if _, err := g.Store.SaveWithKey(ctx, thumbKey, "image/jpeg", bytes.NewReader(thumb)); err != nil {
		telemetry.Warn("storage.thumbnail_save_failed", map[string]any{
			"storage_key": storageKey,
			"error":       err.Error(),
		})
		return stored, nil
	}
	stored.ThumbnailKey = thumbKey
	return stored, nil
}

// Delete removes the stored file and its thumbnail. Only the primary
// object's failure propagates; a stale thumbnail is just logged.
func (g *Gateway) Delete(ctx context.Context, storageKey, thumbnailKey string) error {
	if err := g.Store.Delete(ctx, storageKey); err != nil {
		return err
	}
	if thumbnailKey != "" {
		if err := g.Store.Delete(ctx, thumbnailKey); err != nil {
			telemetry.Warn("storage.thumbnail_delete_failed", map[string]any{
				"thumbnail_key": thumbnailKey,
				"error":         err.Error(),
			})
		}
	}
	return nil
}
