package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"meeting-backend/internal/analyses"
	"meeting-backend/internal/analysis"
	"meeting-backend/internal/heuristics"
	"meeting-backend/internal/llm"
	"meeting-backend/internal/llm/openrouter"
	"meeting-backend/internal/shared/cache"
	"meeting-backend/internal/shared/config"
	"meeting-backend/internal/shared/server"
	"meeting-backend/internal/shared/storage/db"
	"meeting-backend/internal/shared/storage/object"
	localstore "meeting-backend/internal/shared/storage/object/local"
	s3store "meeting-backend/internal/shared/storage/object/s3"
	"meeting-backend/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Redis           *redis.Client
	Uploads         object.ObjectStore
	Outputs         object.ObjectStore
	Repo            analyses.Repo
	Cache           cache.Cache
	Engines         map[string]analysis.Engine
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
}

// Build prepares dependencies and the router. The database and redis are
// optional; in dev an unreachable backend falls back to the in-process one.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	app := &App{Config: cfg}

	var err error
	app.Uploads, app.Outputs, err = buildStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app.DB, err = buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if app.DB != nil {
		app.Repo = &analyses.PGRepo{DB: app.DB}
	} else {
		app.Repo = analyses.NewMemoryRepo()
	}

	app.Cache, app.Redis, err = buildCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app.Engines = BuildEngines(cfg)

	app.AnalysesService = &analyses.Service{
		Engines:       app.Engines,
		DefaultEngine: cfg.AnalysisEngine,
		Uploads:       app.Uploads,
		Outputs:       app.Outputs,
		Repo:          app.Repo,
		Cache:         app.Cache,
		CacheTTL:      cfg.CacheTTL,
	}
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService, cfg.MaxUploadBytes, cfg.OpenRouterConfigured(), cfg.OpenRouterModel)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: app.AnalysisHandler,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"engine":                  cfg.AnalysisEngine,
		"model":                   cfg.OpenRouterModel,
		"openrouter_configured":   cfg.OpenRouterConfigured(),
		"object_store":            cfg.ObjectStoreType,
		"catalog":                 catalogKind(app.DB),
		"cache":                   app.Redis != nil,
		"analyze_rate_per_minute": cfg.AnalyzeRatePerMinute,
	})
	return app, nil
}

// Close releases external connections.
func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}

// BuildEngines constructs both engines. The LLM engine is always registered;
// without an API key its analyses fail with a not-configured error.
func BuildEngines(cfg config.Config) map[string]analysis.Engine {
	var client llm.Client
	orClient, err := openrouter.NewClient(openrouter.Options{
		APIKey:      cfg.OpenRouterAPIKey,
		APIURL:      cfg.OpenRouterAPIURL,
		Model:       cfg.OpenRouterModel,
		Referer:     cfg.OpenRouterReferer,
		Title:       cfg.OpenRouterTitle,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
	})
	if err != nil {
		telemetry.Warn("llm.not_configured", map[string]any{"err": err})
	} else {
		client = orClient
	}

	prompts := llm.PromptLoader{Dir: cfg.PromptsDir, Files: cfg.PromptFiles}
	return map[string]analysis.Engine{
		analysis.EngineHeuristic: heuristics.NewEngine(),
		analysis.EngineLLM:       llm.NewEngine(client, prompts),
	}
}

func buildStores(ctx context.Context, cfg config.Config) (object.ObjectStore, object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		uploads, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, path.Join(cfg.S3Prefix, "uploads"), cfg.SSEKMSKeyID)
		if err != nil {
			return nil, nil, fmt.Errorf("uploads store: %w", err)
		}
		outputs, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, path.Join(cfg.S3Prefix, "outputs"), cfg.SSEKMSKeyID)
		if err != nil {
			return nil, nil, fmt.Errorf("outputs store: %w", err)
		}
		return uploads, outputs, nil
	default:
		return localstore.New(cfg.UploadsDir), localstore.New(cfg.OutputsDir), nil
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.DefaultServerOptions())
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.db_unavailable", map[string]any{"err": err, "fallback": "memory"})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildCache(ctx context.Context, cfg config.Config) (cache.Cache, *redis.Client, error) {
	if cfg.RedisAddr == "" {
		return cache.Nop{}, nil, nil
	}
	c, client, err := cache.Dial(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.redis_unavailable", map[string]any{"err": err, "fallback": "none"})
			return cache.Nop{}, nil, nil
		}
		return nil, nil, err
	}
	return c, client, nil
}

func catalogKind(database *sql.DB) string {
	if database != nil {
		return "postgres"
	}
	return "memory"
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
