package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/courserate-backend/internal/data/cache"
	"github.com/yungbote/courserate-backend/internal/data/db"
	apphttp "github.com/yungbote/courserate-backend/internal/http"
	"github.com/yungbote/courserate-backend/internal/observability"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Cache    cache.CourseCache
	Metrics  *observability.Metrics
	Repos    Repos
	Services Services
	Server   *apphttp.Server

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig()
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Environment != envDevelopment {
		gin.SetMode(gin.ReleaseMode)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)
	metrics := observability.Init(log, cfg.MetricsEnabled)

	dbService, err := db.NewService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("db automigrate: %w", err)
	}

	courseCache, err := cache.NewRedisCourseCache(log, cfg.Redis)
	if err != nil {
		log.Warn("Redis course cache unavailable, continuing without cache", "error", err)
		courseCache = cache.NewNoopCourseCache()
	}

	theDB := dbService.DB()
	sqlDB, err := theDB.DB()
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, fmt.Errorf("db handle: %w", err)
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, courseCache, metrics)
	handlerset := wireHandlers(log, cfg, serviceset, sqlDB)
	middleware := wireMiddleware(log, serviceset)
	server := apphttp.NewServer(":"+cfg.Port, wireRouterConfig(log, cfg, handlerset, middleware, metrics))

	return &App{
		Log:          log,
		Cfg:          cfg,
		DB:           dbService,
		Cache:        courseCache,
		Metrics:      metrics,
		Repos:        reposet,
		Services:     serviceset,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP (and metrics when enabled) until ctx is cancelled or a server fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	a.Metrics.StartDBCollector(gctx, a.Log, a.DB.DB())
	a.Metrics.StartRedisCollector(gctx, a.Log, cache.RedisClient(a.Cache))

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "port", a.Cfg.Port)
		return a.Server.Run()
	})
	if a.Metrics != nil {
		g.Go(func() error {
			return a.Metrics.StartServer(gctx, a.Log, a.Cfg.MetricsAddr)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		a.Log.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.Log.Warn("course cache close failed", "error", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("db close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
