package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"medvault-backend/internal/shared/server/respond"
	"medvault-backend/internal/users"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/register", h.register)
	rg.POST("/login", h.login)
}

type registerRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
	FullName    string `json:"fullName"`
}

type loginRequest struct {
	PhoneNumber string `json:"phoneNumber"`
	Password    string `json:"password"`
}

func (h *Handler) register(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "service unavailable", nil)
		return
	}
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", nil)
		return
	}
	user, token, err := h.Svc.Register(c.Request.Context(), req.PhoneNumber, req.Password, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPhone):
			respond.Error(c, http.StatusBadRequest, "INVALID_PHONE", "phone number must match +977 followed by ten digits", nil)
		case errors.Is(err, ErrWeakPassword):
			respond.Error(c, http.StatusBadRequest, "WEAK_PASSWORD", "password must be at least 8 characters and contain a digit", nil)
		case errors.Is(err, users.ErrPhoneTaken):
			respond.Error(c, http.StatusConflict, "PHONE_TAKEN", "phone number already registered", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "registration failed", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{"user": user, "token": token})
}

func (h *Handler) login(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "service unavailable", nil)
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", nil)
		return
	}
	user, token, err := h.Svc.Login(c.Request.Context(), req.PhoneNumber, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidPhone):
			respond.Error(c, http.StatusBadRequest, "INVALID_PHONE", "phone number must match +977 followed by ten digits", nil)
		case errors.Is(err, ErrInvalidCredentials):
			respond.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid phone number or password", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "login failed", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"user": user, "token": token})
}
