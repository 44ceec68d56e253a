package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"medvault-backend/internal/shared/server/middleware"
	"medvault-backend/internal/shared/server/respond"
	"medvault-backend/internal/users"
)

// maxRequestSize bounds the whole multipart body, leaving headroom over
// the document ceiling for the metadata fields.
const maxRequestSize = MaxFileSize + 1<<20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/upload", h.upload)
	rg.GET("/documents/my-documents", h.list)
	rg.GET("/documents/storage/info", h.storageInfo)
	rg.GET("/documents/:id", h.get)
	rg.PUT("/documents/:id", h.update)
	rg.DELETE("/documents/:id", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "unable to read file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "unable to read file", nil)
		return
	}

	in := UploadInput{
		FileName:       fileHeader.Filename,
		Data:           data,
		MimeType:       mimeFromHeader(fileHeader.Header.Get("Content-Type"), data),
		Type:           c.PostForm("type"),
		Title:          c.PostForm("title"),
		Description:    c.PostForm("description"),
		Notes:          c.PostForm("notes"),
		ProcessWithOCR: formBool(c.PostForm("processWithOCR")),
		ProcessWithAI:  formBool(c.PostForm("processWithAI")),
	}

	doc, err := h.Svc.Upload(c.Request.Context(), userID, in)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileTooLarge):
			respond.Error(c, http.StatusBadRequest, "FILE_TOO_LARGE", err.Error(), nil)
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", err.Error(), nil)
		case errors.Is(err, ErrQuotaExceeded):
			respond.Error(c, http.StatusBadRequest, "STORAGE_QUOTA_EXCEEDED", err.Error(), nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		case errors.Is(err, users.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to upload document", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{"document": toResponse(doc)})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	docs, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list documents", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"documents": toResponses(docs)})
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")

	doc, err := h.Svc.Get(c.Request.Context(), userID, documentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "NOT_FOUND", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load document", nil)
		return
	}

	body := gin.H{"document": toResponse(doc)}
	if analysis, err := h.Svc.Analysis(c.Request.Context(), userID, documentID); err == nil {
		body["analysis"] = analysis
	}
	respond.JSON(c, http.StatusOK, body)
}

type updateRequest struct {
	Type        *string `json:"type"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Notes       *string `json:"notes"`
}

func (h *Handler) update(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")

	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", nil)
		return
	}
	doc, err := h.Svc.Update(c.Request.Context(), userID, documentID, UpdateInput{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Notes:       req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "NOT_FOUND", "document not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to update document", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"document": toResponse(doc)})
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	documentID := c.Param("id")

	if err := h.Svc.Delete(c.Request.Context(), userID, documentID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "NOT_FOUND", "document not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to delete document", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"message": "document deleted"})
}

func (h *Handler) storageInfo(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	info, err := h.Svc.StorageInfo(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load storage info", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"storage": info})
}

func mimeFromHeader(declared string, data []byte) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared != "" && declared != "application/octet-stream" {
		if idx := strings.Index(declared, ";"); idx >= 0 {
			declared = strings.TrimSpace(declared[:idx])
		}
		return declared
	}
	return http.DetectContentType(data)
}

func formBool(value string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && parsed
}
