package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/courserate-backend/internal/http/handlers"
	httpMW "github.com/yungbote/courserate-backend/internal/http/middleware"
	"github.com/yungbote/courserate-backend/internal/observability"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware
	CourseHandler  *httpH.CourseHandler
	ReviewHandler  *httpH.ReviewHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/users/register", cfg.AuthHandler.Register)
			api.POST("/users/login", cfg.AuthHandler.Login)
			api.POST("/users/logout", cfg.AuthHandler.Logout)
		}

		// Course (public)
		if cfg.CourseHandler != nil {
			api.GET("/courses", cfg.CourseHandler.ListCourses)
			api.GET("/courses/:slug", cfg.CourseHandler.GetCourse)
		}

		// Review listings are public, single review detail is owner only.
		if cfg.ReviewHandler != nil {
			api.GET("/courses/:slug/reviews", cfg.ReviewHandler.ListCourseReviews)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Course
		if cfg.CourseHandler != nil {
			protected.POST("/courses", cfg.CourseHandler.CreateCourse)
		}

		// Review
		if cfg.ReviewHandler != nil {
			protected.POST("/reviews", cfg.ReviewHandler.CreateReview)
			protected.POST("/courses/:slug/reviews", cfg.ReviewHandler.CreateCourseReview)
			protected.GET("/reviews/:id", cfg.ReviewHandler.GetReview)
			protected.PUT("/reviews/:id", cfg.ReviewHandler.UpdateReview)
			protected.DELETE("/reviews/:id", cfg.ReviewHandler.DeleteReview)
			protected.GET("/me/reviews", cfg.ReviewHandler.ListMyReviews)
		}
	}

	return r
}
