package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/events"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/llm/gemini"
	"resume-tailor/internal/llm/openai"
	"resume-tailor/internal/quota"
	"resume-tailor/internal/recommendations"
	"resume-tailor/internal/resumes"
	"resume-tailor/internal/services/health"
	"resume-tailor/internal/shared/cache"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/server"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/storage/db"
	"resume-tailor/internal/shared/storage/object"
	localstore "resume-tailor/internal/shared/storage/object/local"
	s3store "resume-tailor/internal/shared/storage/object/s3"
	"resume-tailor/internal/shared/telemetry"
)

const blobCachePrefix = "blob"

// App holds shared dependencies.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Events events.Publisher
	LLM    llm.Client

	ResumesRepo            resumes.Repo
	ResumesService         *resumes.Service
	QuotaService           *quota.Service
	RecommendationsService *recommendations.Service

	closers []func()
}

// Close releases connections opened by Build.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Build wires every dependency and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	app := &App{Config: cfg}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Store = object.WithCache(store, app.buildCache(cfg))

	publisher, err := app.buildEvents(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Events = publisher

	client, err := buildLLM(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.LLM = client

	buildServices(app)

	var pinger health.Pinger
	if app.DB != nil {
		pinger = app.DB
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:                 cfg,
		Health:                 health.NewService(pinger),
		ResumeHandler:          resumes.NewHandler(app.ResumesService),
		RecommendationsHandler: recommendations.NewHandler(app.RecommendationsService),
		QuotaHandler:           quota.NewHandler(app.QuotaService),
		RateLimiter:            middleware.NewRateLimiter(nil),
	})
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, errors.New("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.db.memory", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}

	if !db.IsLambdaRuntime() {
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:    cfg.AWSRegion,
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			KMSKeyID:  cfg.SSEKMSKeyID,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func (a *App) buildCache(cfg config.Config) cache.Cache {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return cache.NewMemory(cfg.BlobCacheTTL)
	}
	client := cache.NewRedisClient(cfg.RedisURL)
	a.closers = append(a.closers, func() { _ = client.Close() })
	telemetry.Info("bootstrap.cache", map[string]any{"backend": "redis"})
	return cache.NewRedis(client, blobCachePrefix, cfg.BlobCacheTTL)
}

func (a *App) buildEvents(ctx context.Context, cfg config.Config) (events.Publisher, error) {
	var out events.Fanout
	if url := strings.TrimSpace(cfg.EventsSQSQueueURL); url != "" {
		p, err := events.NewSQSPublisher(ctx, cfg.AWSRegion, url)
		if err != nil {
			return nil, fmt.Errorf("sqs publisher: %w", err)
		}
		out = append(out, p)
	}
	if url := strings.TrimSpace(cfg.NATSURL); url != "" {
		p, err := events.NewNATSPublisher(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("nats publisher: %w", err)
		}
		a.closers = append(a.closers, p.Close)
		out = append(out, p)
	}
	switch len(out) {
	case 0:
		return events.Noop{}, nil
	case 1:
		return out[0], nil
	default:
		return out, nil
	}
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" && cfg.IsDevLike() {
			telemetry.Warn("bootstrap.llm.placeholder", map[string]any{"provider": "openai", "reason": "OPENAI_API_KEY empty"})
			return llm.PlaceholderClient{}, nil
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	case "gemini":
		if cfg.GeminiAPIKey == "" && cfg.IsDevLike() {
			telemetry.Warn("bootstrap.llm.placeholder", map[string]any{"provider": "gemini", "reason": "GEMINI_API_KEY empty"})
			return llm.PlaceholderClient{}, nil
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
	default:
		return llm.PlaceholderClient{}, nil
	}
}

func buildServices(app *App) {
	policy := quota.Policy{Floor: app.Config.QuotaFloor, Cooldown: app.Config.QuotaCooldown}
	if policy.Floor <= 0 || policy.Cooldown <= 0 {
		policy = quota.DefaultPolicy()
	}

	if app.DB != nil {
		app.ResumesRepo = &resumes.PGRepo{DB: app.DB}
		app.QuotaService = quota.NewPostgresService(quota.NewPGStore(app.DB), policy)
	} else {
		app.ResumesRepo = resumes.NewMemoryRepo()
		app.QuotaService = quota.NewService(policy)
	}

	app.ResumesService = resumes.NewService(app.Store, app.ResumesRepo, app.Events, app.Config.SignedURLTTL)
	app.RecommendationsService = recommendations.NewService(app.ResumesService, app.QuotaService, app.LLM, app.Events)
}
