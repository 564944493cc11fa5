package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/courserate-backend/internal/data/aggregates"
	"github.com/yungbote/courserate-backend/internal/data/cache"
	"github.com/yungbote/courserate-backend/internal/data/repos"
	domainagg "github.com/yungbote/courserate-backend/internal/domain/aggregates"
	apphttp "github.com/yungbote/courserate-backend/internal/http"
	httpH "github.com/yungbote/courserate-backend/internal/http/handlers"
	httpMW "github.com/yungbote/courserate-backend/internal/http/middleware"
	"github.com/yungbote/courserate-backend/internal/observability"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
	"github.com/yungbote/courserate-backend/internal/services"
)

type Repos struct {
	User   repos.UserRepo
	Course repos.CourseRepo
	Review repos.ReviewRepo
}

type Services struct {
	Auth            services.AuthService
	Course          services.CourseService
	Review          services.ReviewService
	ReviewAggregate domainagg.ReviewAggregate
}

type Handlers struct {
	Health *httpH.HealthHandler
	Auth   *httpH.AuthHandler
	Course *httpH.CourseHandler
	Review *httpH.ReviewHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:   repos.NewUserRepo(db, log),
		Course: repos.NewCourseRepo(db, log),
		Review: repos.NewReviewRepo(db, log),
	}
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, courseCache cache.CourseCache, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	reviewAgg := aggregates.NewReviewAggregate(aggregates.ReviewAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:          db,
			Log:         log,
			Hooks:       aggregates.NewObservabilityHooks(metrics),
			MaxAttempts: cfg.AggregateMaxAttempts,
		},
		Users:   reposet.User,
		Courses: reposet.Course,
		Reviews: reposet.Review,
	})
	contract := reviewAgg.Contract()
	log.Info("aggregate wired", "name", contract.Name, "tx_ownership", contract.WriteTxOwnership, "read_policy", contract.ReadPolicy)
	courseService := services.NewCourseService(log, reposet.Course, reposet.Review, courseCache)
	return Services{
		Auth:            services.NewAuthService(log, reposet.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Course:          courseService,
		Review:          services.NewReviewService(log, reviewAgg, reposet.Review, courseService),
		ReviewAggregate: reviewAgg,
	}
}

func wireHandlers(log *logger.Logger, cfg Config, serviceset Services, health httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(health),
		Auth:   httpH.NewAuthHandler(log, serviceset.Auth, cfg.CookieSecure),
		Course: httpH.NewCourseHandler(log, serviceset.Course),
		Review: httpH.NewReviewHandler(log, serviceset.Review),
	}
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, serviceset.Auth),
	}
}

func wireRouterConfig(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) apphttp.RouterConfig {
	return apphttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.Otel.ServiceName,
		TracingEnabled: cfg.Otel.Enabled,
		CORSOrigins:    cfg.CORSOrigins,
		HealthHandler:  handlers.Health,
		AuthHandler:    handlers.Auth,
		AuthMiddleware: middleware.Auth,
		CourseHandler:  handlers.Course,
		ReviewHandler:  handlers.Review,
	}
}
