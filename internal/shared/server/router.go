package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"medvault-backend/internal/auth"
	"medvault-backend/internal/documents"
	"medvault-backend/internal/shared/config"
	"medvault-backend/internal/shared/metrics"
	"medvault-backend/internal/shared/server/middleware"
	"medvault-backend/internal/shared/server/respond"
	"medvault-backend/internal/users"
)

const serviceName = "medvault-backend"

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config          config.Config
	AuthHandler     *auth.Handler
	UserHandler     *users.Handler
	DocumentHandler *documents.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   serviceName,
		})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api")
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(api.Group("/auth"))
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
