package documents_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"medvault-backend/internal/bootstrap"
	"medvault-backend/internal/shared/config"
)

func buildTestApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:                "0",
		Env:                 "dev",
		CORSAllowOrigin:     []string{"http://localhost:5173"},
		ObjectStoreType:     "local",
		LocalStoreDir:       t.TempDir(),
		EnrichmentWorkers:   1,
		EnrichmentQueueSize: 8,
		DefaultStorageQuota: 100 << 20,
	}
	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}

func registerTestUser(t *testing.T, router *gin.Engine, phone string) string {
	t.Helper()
	payload := fmt.Sprintf(`{"phoneNumber":%q,"password":"Password123","fullName":"Asha Rai"}`, phone)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if body.Token == "" {
		t.Fatal("expected a token")
	}
	return body.Token
}

func multipartUpload(t *testing.T, fileName string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fileWriter, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fileWriter.Write(data); err != nil {
		t.Fatalf("write file: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestDocumentLifecycleOverHTTP(t *testing.T) {
	app := buildTestApp(t)
	router := app.Router
	token := registerTestUser(t, router, "+9779811111111")

	// Upload.
	body, contentType := multipartUpload(t, "scan.png", pngBytes(t), map[string]string{
		"type":  "lab_report",
		"title": "CBC",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var created struct {
		Document struct {
			ID       string `json:"id"`
			Type     string `json:"type"`
			Title    string `json:"title"`
			Status   string `json:"status"`
			FileSize int64  `json:"fileSize"`
		} `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if created.Document.ID == "" || created.Document.Type != "lab_report" || created.Document.Title != "CBC" {
		t.Fatalf("unexpected document: %+v", created.Document)
	}
	if created.Document.Status != "pending_processing" {
		t.Fatalf("expected pending_processing, got %s", created.Document.Status)
	}

	// List.
	reqList := httptest.NewRequest(http.MethodGet, "/api/documents/my-documents", nil)
	reqList.Header.Set("Authorization", "Bearer "+token)
	respList := httptest.NewRecorder()
	router.ServeHTTP(respList, reqList)
	if respList.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", respList.Code)
	}
	var listed struct {
		Documents []struct {
			ID string `json:"id"`
		} `json:"documents"`
	}
	if err := json.NewDecoder(respList.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed.Documents) != 1 || listed.Documents[0].ID != created.Document.ID {
		t.Fatalf("unexpected listing: %+v", listed.Documents)
	}

	// Update metadata.
	update := bytes.NewBufferString(`{"title":"CBC March","notes":"fasting sample"}`)
	reqUpdate := httptest.NewRequest(http.MethodPut, "/api/documents/"+created.Document.ID, update)
	reqUpdate.Header.Set("Content-Type", "application/json")
	reqUpdate.Header.Set("Authorization", "Bearer "+token)
	respUpdate := httptest.NewRecorder()
	router.ServeHTTP(respUpdate, reqUpdate)
	if respUpdate.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", respUpdate.Code, respUpdate.Body.String())
	}

	// Fetch and check the edit stuck.
	reqGet := httptest.NewRequest(http.MethodGet, "/api/documents/"+created.Document.ID, nil)
	reqGet.Header.Set("Authorization", "Bearer "+token)
	respGet := httptest.NewRecorder()
	router.ServeHTTP(respGet, reqGet)
	if respGet.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", respGet.Code)
	}
	var fetched struct {
		Document struct {
			Title string `json:"title"`
			Notes string `json:"notes"`
		} `json:"document"`
	}
	if err := json.NewDecoder(respGet.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if fetched.Document.Title != "CBC March" || fetched.Document.Notes != "fasting sample" {
		t.Fatalf("unexpected document after update: %+v", fetched.Document)
	}

	// Storage info reflects the upload.
	reqInfo := httptest.NewRequest(http.MethodGet, "/api/documents/storage/info", nil)
	reqInfo.Header.Set("Authorization", "Bearer "+token)
	respInfo := httptest.NewRecorder()
	router.ServeHTTP(respInfo, reqInfo)
	if respInfo.Code != http.StatusOK {
		t.Fatalf("storage info: expected 200, got %d", respInfo.Code)
	}
	var info struct {
		Storage struct {
			Used  int64 `json:"used"`
			Quota int64 `json:"quota"`
		} `json:"storage"`
	}
	if err := json.NewDecoder(respInfo.Body).Decode(&info); err != nil {
		t.Fatalf("decode storage info: %v", err)
	}
	if info.Storage.Used != created.Document.FileSize {
		t.Fatalf("expected used %d, got %d", created.Document.FileSize, info.Storage.Used)
	}

	// Delete, then the document is gone and usage is released.
	reqDel := httptest.NewRequest(http.MethodDelete, "/api/documents/"+created.Document.ID, nil)
	reqDel.Header.Set("Authorization", "Bearer "+token)
	respDel := httptest.NewRecorder()
	router.ServeHTTP(respDel, reqDel)
	if respDel.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", respDel.Code)
	}

	respGet2 := httptest.NewRecorder()
	reqGet2 := httptest.NewRequest(http.MethodGet, "/api/documents/"+created.Document.ID, nil)
	reqGet2.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(respGet2, reqGet2)
	if respGet2.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", respGet2.Code)
	}
}

func TestUploadRejectsOversizeOverHTTP(t *testing.T) {
	app := buildTestApp(t)
	token := registerTestUser(t, app.Router, "+9779822222222")

	// Over the document ceiling but inside the request bound.
	body, contentType := multipartUpload(t, "huge.png", make([]byte, 5<<20+1024), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var failure struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if failure.Success || failure.Error.Code != "FILE_TOO_LARGE" {
		t.Fatalf("unexpected error body: %+v", failure)
	}
}

func TestDocumentsRequireAuth(t *testing.T) {
	app := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/documents/my-documents", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.Code)
	}
	var failure struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&failure); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if failure.Success || failure.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("unexpected error body: %+v", failure)
	}
}
