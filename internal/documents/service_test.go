package documents_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"medvault-backend/internal/documents"
	"medvault-backend/internal/enrichment"
	"medvault-backend/internal/insight"
	"medvault-backend/internal/ocr"
	localstore "medvault-backend/internal/shared/storage/object/local"
	"medvault-backend/internal/users"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, quota int64) (*documents.Service, users.Repo, string) {
	t.Helper()
	usersRepo := users.NewMemoryRepo()
	owner := users.User{
		ID:           "user-1",
		PhoneNumber:  "+9779811111111",
		PasswordHash: "x",
		StorageQuota: quota,
	}
	if err := usersRepo.Create(context.Background(), owner); err != nil {
		t.Fatalf("create user: %v", err)
	}
	svc := &documents.Service{
		Repo:     documents.NewMemoryRepo(usersRepo),
		Users:    usersRepo,
		Gateway:  &documents.Gateway{Store: localstore.New(t.TempDir())},
		Engine:   ocr.Placeholder{},
		Analyzer: insight.Placeholder{},
	}
	return svc, usersRepo, owner.ID
}

func TestUploadChargesQuotaAndRejectsOverrun(t *testing.T) {
	data := pngBytes(t)
	quota := int64(len(data)) + int64(len(data))/2
	svc, usersRepo, userID := newTestService(t, quota)

	doc, err := svc.Upload(context.Background(), userID, documents.UploadInput{
		FileName: "scan.png",
		Data:     data,
		MimeType: "image/png",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if doc.FileSize != int64(len(data)) {
		t.Fatalf("expected fileSize %d, got %d", len(data), doc.FileSize)
	}
	if doc.Status != documents.StatusPendingProcessing {
		t.Fatalf("expected pending_processing, got %s", doc.Status)
	}
	if doc.ThumbnailKey == "" {
		t.Fatal("expected a thumbnail key for an image upload")
	}

	owner, err := usersRepo.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if owner.StorageUsed != int64(len(data)) {
		t.Fatalf("expected storageUsed %d, got %d", len(data), owner.StorageUsed)
	}

	// A second identical upload no longer fits.
	_, err = svc.Upload(context.Background(), userID, documents.UploadInput{
		FileName: "scan2.png",
		Data:     data,
		MimeType: "image/png",
	})
	if !errors.Is(err, documents.ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if !strings.Contains(err.Error(), "MB") {
		t.Fatalf("expected human-readable sizes in message, got %q", err.Error())
	}

	docs, err := svc.List(context.Background(), userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document after rejected upload, got %d", len(docs))
	}
	owner, _ = usersRepo.GetByID(context.Background(), userID)
	if owner.StorageUsed != int64(len(data)) {
		t.Fatalf("usage changed by rejected upload: %d", owner.StorageUsed)
	}
}

func TestUploadRejectsOversizeFile(t *testing.T) {
	svc, _, userID := newTestService(t, 1<<30)

	_, err := svc.Upload(context.Background(), userID, documents.UploadInput{
		FileName: "huge.png",
		Data:     make([]byte, documents.MaxFileSize+1),
		MimeType: "image/png",
	})
	if !errors.Is(err, documents.ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if !strings.Contains(err.Error(), "5.00MB") {
		t.Fatalf("expected limit in message, got %q", err.Error())
	}
}

func TestUploadRejectsUnsupportedMime(t *testing.T) {
	svc, _, userID := newTestService(t, 1<<30)

	_, err := svc.Upload(context.Background(), userID, documents.UploadInput{
		FileName: "notes.txt",
		Data:     []byte("just some text"),
		MimeType: "text/plain",
	})
	if !errors.Is(err, documents.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestUpdatePartialAndNoOp(t *testing.T) {
	svc, _, userID := newTestService(t, 1<<30)
	data := pngBytes(t)

	doc, err := svc.Upload(context.Background(), userID, documents.UploadInput{
		FileName: "scan.png",
		Data:     data,
		MimeType: "image/png",
		Title:    "original",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	// Empty update returns the current state without writing.
	same, err := svc.Update(context.Background(), userID, doc.ID, documents.UpdateInput{})
	if err != nil {
		t.Fatalf("noop update: %v", err)
	}
	if same.Title != "original" {
		t.Fatalf("noop update changed title to %q", same.Title)
	}

	title := "CBC report"
	docType := documents.TypeLabReport
	updated, err := svc.Update(context.Background(), userID, doc.ID, documents.UpdateInput{
		Title: &title,
		Type:  &docType,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != title || updated.Type != documents.TypeLabReport {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	if updated.Notes != "" {
		t.Fatalf("untouched field changed: %q", updated.Notes)
	}

	bad := "diary"
	if _, err := svc.Update(context.Background(), userID, doc.ID, documents.UpdateInput{Type: &bad}); !errors.Is(err, documents.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown type, got %v", err)
	}

	if _, err := svc.Update(context.Background(), "someone-else", doc.ID, documents.UpdateInput{Title: &title}); !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("expected not found for foreign owner, got %v", err)
	}
}

func TestDeleteReleasesQuota(t *testing.T) {
	svc, usersRepo, userID := newTestService(t, 1<<30)
	data := pngBytes(t)

	doc, err := svc.Upload(context.Background(), userID, documents.UploadInput{
		FileName: "scan.png",
		Data:     data,
		MimeType: "image/png",
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := svc.Delete(context.Background(), userID, doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	owner, _ := usersRepo.GetByID(context.Background(), userID)
	if owner.StorageUsed != 0 {
		t.Fatalf("expected storageUsed 0 after delete, got %d", owner.StorageUsed)
	}

	if err := svc.Delete(context.Background(), userID, doc.ID); !errors.Is(err, documents.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestStorageInfo(t *testing.T) {
	svc, usersRepo, userID := newTestService(t, 1000)
	if err := usersRepo.ReserveStorage(context.Background(), userID, 250); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	info, err := svc.StorageInfo(context.Background(), userID)
	if err != nil {
		t.Fatalf("storage info: %v", err)
	}
	if info.Used != 250 || info.Quota != 1000 || info.Remaining != 750 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if info.UsedPercentage != 25 {
		t.Fatalf("expected 25%%, got %v", info.UsedPercentage)
	}
}

func TestUploadQueuesAnalysisThroughPool(t *testing.T) {
	svc, _, userID := newTestService(t, 1<<30)
	pool := enrichment.NewPool(1, 8)
	defer pool.Stop()
	svc.Pool = pool

	doc, err := svc.Upload(context.Background(), userID, documents.UploadInput{
		FileName:      "scan.png",
		Data:          pngBytes(t),
		MimeType:      "image/png",
		ProcessWithAI: true,
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		current, err := svc.Get(context.Background(), userID, doc.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if current.Status == documents.StatusProcessed {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("document never reached processed, status %s", current.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	analysis, err := svc.Analysis(context.Background(), userID, doc.ID)
	if err != nil {
		t.Fatalf("analysis: %v", err)
	}
	if analysis.Summary == "" {
		t.Fatal("expected a summary from the placeholder analyzer")
	}
}
