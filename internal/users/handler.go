package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medvault-backend/internal/shared/server/middleware"
	"medvault-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile", h.getProfile)
	rg.PUT("/profile", h.updateProfile)
}

func (h *Handler) getProfile(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "service unavailable", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if err == ErrNotFound {
			respond.Error(c, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load profile", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) updateProfile(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "service unavailable", nil)
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	user, err := h.Svc.UpdateProfile(c.Request.Context(), userID, ProfileUpdate{
		FullName:              req.FullName,
		DateOfBirth:           req.DateOfBirth,
		Gender:                req.Gender,
		BloodType:             req.BloodType,
		Allergies:             req.Allergies,
		ChronicConditions:     req.ChronicConditions,
		EmergencyContactName:  req.EmergencyContactName,
		EmergencyContactPhone: req.EmergencyContactPhone,
	})
	if err != nil {
		if err == ErrNotFound {
			respond.Error(c, http.StatusNotFound, "NOT_FOUND", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to update profile", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"user": user})
}

type updateProfileRequest struct {
	FullName              *string `json:"fullName"`
	DateOfBirth           *string `json:"dateOfBirth"`
	Gender                *string `json:"gender"`
	BloodType             *string `json:"bloodType"`
	Allergies             *string `json:"allergies"`
	ChronicConditions     *string `json:"chronicConditions"`
	EmergencyContactName  *string `json:"emergencyContactName"`
	EmergencyContactPhone *string `json:"emergencyContactPhone"`
}
