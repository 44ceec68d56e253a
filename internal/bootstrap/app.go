package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"medvault-backend/internal/auth"
	"medvault-backend/internal/documents"
	"medvault-backend/internal/enrichment"
	"medvault-backend/internal/insight"
	"medvault-backend/internal/ocr"
	"medvault-backend/internal/shared/config"
	"medvault-backend/internal/shared/server"
	"medvault-backend/internal/shared/storage/db"
	"medvault-backend/internal/shared/storage/object"
	localstore "medvault-backend/internal/shared/storage/object/local"
	s3store "medvault-backend/internal/shared/storage/object/s3"
	"medvault-backend/internal/users"
)

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Pool   *enrichment.Pool

	UsersRepo     users.Repo
	DocumentsRepo documents.DocumentsRepo

	AuthService      *auth.Service
	UsersService     *users.Service
	DocumentsService *documents.Service

	AuthHandler      *auth.Handler
	UsersHandler     *users.Handler
	DocumentsHandler *documents.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Pool:   enrichment.NewPool(cfg.EnrichmentWorkers, cfg.EnrichmentQueueSize),
	}
	if err := buildServices(ctx, app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		AuthHandler:     app.AuthHandler,
		UserHandler:     app.UsersHandler,
		DocumentHandler: app.DocumentsHandler,
	})

	return app, nil
}

// Close stops the enrichment pool and releases the database.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Stop()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(ctx context.Context, app *App) error {
	if app.DB != nil {
		app.UsersRepo = &users.PGRepo{DB: app.DB}
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
	} else {
		memUsers := users.NewMemoryRepo()
		app.UsersRepo = memUsers
		app.DocumentsRepo = documents.NewMemoryRepo(memUsers)
	}

	engine := ocr.Client(ocr.Placeholder{})
	if strings.TrimSpace(app.Config.VisionAPIKey) != "" {
		visionClient, err := ocr.NewVisionClient(ctx, app.Config.VisionAPIKey)
		if err != nil {
			return err
		}
		engine = visionClient
	} else {
		log.Printf("bootstrap: VISION_API_KEY empty; text extraction disabled")
	}

	analyzer := insight.Client(insight.Placeholder{})
	if strings.TrimSpace(app.Config.GeminiAPIKey) != "" {
		geminiClient, err := insight.NewGeminiClient(ctx, app.Config.GeminiAPIKey, app.Config.GeminiModel)
		if err != nil {
			return err
		}
		analyzer = geminiClient
	} else {
		log.Printf("bootstrap: GEMINI_API_KEY empty; document analysis disabled")
	}

	app.AuthService = auth.NewService(app.UsersRepo, app.Config.DefaultStorageQuota)
	app.UsersService = users.NewService(app.UsersRepo)
	app.DocumentsService = &documents.Service{
		Repo:     app.DocumentsRepo,
		Users:    app.UsersRepo,
		Gateway:  &documents.Gateway{Store: app.Store},
		Pool:     app.Pool,
		Engine:   engine,
		Analyzer: analyzer,
	}

	app.AuthHandler = auth.NewHandler(app.AuthService)
	app.UsersHandler = users.NewHandler(app.UsersService)
	app.DocumentsHandler = documents.NewHandler(app.DocumentsService)
	return nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
