package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/devcamper-backend/internal/domain"
	httpH "github.com/yungbote/devcamper-backend/internal/http/handlers"
	httpMW "github.com/yungbote/devcamper-backend/internal/http/middleware"
	"github.com/yungbote/devcamper-backend/internal/observability"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string
	// UploadsDir is served read-only under /uploads when set.
	UploadsDir string

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler     *httpH.AuthHandler
	UserHandler     *httpH.UserHandler
	BootcampHandler *httpH.BootcampHandler
	CourseHandler   *httpH.CourseHandler
	ReviewHandler   *httpH.ReviewHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	httpH.RegisterValidators()

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log, "/healthcheck"))
	r.Use(httpMW.Metrics(cfg.Metrics, "/metrics", "/healthcheck"))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	if cfg.UploadsDir != "" {
		r.Static("/uploads", cfg.UploadsDir)
	}

	api := r.Group("/api/v1")

	protect := func(c *gin.Context) { c.Next() }
	authorize := func(...string) gin.HandlerFunc { return func(c *gin.Context) { c.Next() } }
	if cfg.AuthMiddleware != nil {
		protect = cfg.AuthMiddleware.Protect()
		authorize = cfg.AuthMiddleware.Authorize
	}
	publishers := authorize(domain.RolePublisher, domain.RoleAdmin)
	reviewers := authorize(domain.RoleUser, domain.RoleAdmin)
	admins := authorize(domain.RoleAdmin)

	// Auth
	if h := cfg.AuthHandler; h != nil {
		auth := api.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/logout", h.Logout)
		auth.POST("/forgotpassword", h.ForgotPassword)
		auth.PUT("/resetpassword/:resettoken", h.ResetPassword)
		auth.GET("/me", protect, h.Me)
		auth.PUT("/updatedetails", protect, h.UpdateDetails)
		auth.PUT("/updatepassword", protect, h.UpdatePassword)
	}

	// Users (admin)
	if h := cfg.UserHandler; h != nil {
		users := api.Group("/users", protect, admins)
		users.GET("", h.List)
		users.POST("", h.Create)
		users.GET("/:id", h.Get)
		users.PUT("/:id", h.Update)
		users.DELETE("/:id", h.Delete)
	}

	// Bootcamps
	bootcamps := api.Group("/bootcamps")
	if h := cfg.BootcampHandler; h != nil {
		bootcamps.GET("", h.List)
		bootcamps.GET("/:id", h.Get)
		bootcamps.GET("/radius/:zipcode/:distance", h.WithinRadius)
		bootcamps.POST("", protect, publishers, h.Create)
		bootcamps.PUT("/:id", protect, publishers, h.Update)
		bootcamps.DELETE("/:id", protect, publishers, h.Delete)
		bootcamps.PUT("/:id/photo", protect, publishers, h.UploadPhoto)
	}

	// Courses
	if h := cfg.CourseHandler; h != nil {
		bootcamps.GET("/:id/courses", h.List)
		bootcamps.POST("/:id/courses", protect, publishers, h.Create)
		courses := api.Group("/courses")
		courses.GET("", h.List)
		courses.GET("/:id", h.Get)
		courses.PUT("/:id", protect, publishers, h.Update)
		courses.DELETE("/:id", protect, publishers, h.Delete)
	}

	// Reviews
	if h := cfg.ReviewHandler; h != nil {
		bootcamps.GET("/:id/reviews", h.List)
		bootcamps.POST("/:id/reviews", protect, reviewers, h.Create)
		reviews := api.Group("/reviews")
		reviews.GET("", h.List)
		reviews.GET("/:id", h.Get)
		reviews.PUT("/:id", protect, reviewers, h.Update)
		reviews.DELETE("/:id", protect, reviewers, h.Delete)
	}

	return r
}
