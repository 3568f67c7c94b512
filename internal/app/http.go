package app

import (
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/devcamper-backend/internal/http"
	httpH "github.com/yungbote/devcamper-backend/internal/http/handlers"
	httpMW "github.com/yungbote/devcamper-backend/internal/http/middleware"
	"github.com/yungbote/devcamper-backend/internal/observability"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
	"github.com/yungbote/devcamper-backend/internal/platform/storage"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Auth     *httpH.AuthHandler
	User     *httpH.UserHandler
	Bootcamp *httpH.BootcampHandler
	Course   *httpH.CourseHandler
	Review   *httpH.ReviewHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, cfg Config, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(db),
		Auth: httpH.NewAuthHandler(services.Auth, httpH.AuthHandlerConfig{
			CookieTTL:    time.Duration(cfg.JWTCookieExpireDays) * 24 * time.Hour,
			SecureCookie: cfg.Production(),
		}),
		User:     httpH.NewUserHandler(services.User),
		Bootcamp: httpH.NewBootcampHandler(services.Bootcamp),
		Course:   httpH.NewCourseHandler(services.Course),
		Review:   httpH.NewReviewHandler(services.Review),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	uploads := ""
	if storage.Mode(cfg.PhotoStorage) == storage.ModeLocal {
		uploads = cfg.FileUploadPath
	}
	return http.NewServer(http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.OtelServiceName,
		TracingEnabled: cfg.OtelEnabled,
		CORSOrigins:    cfg.CORSAllowedOrigins,
		UploadsDir:     uploads,

		AuthMiddleware: middleware.Auth,

		HealthHandler:   handlers.Health,
		AuthHandler:     handlers.Auth,
		UserHandler:     handlers.User,
		BootcampHandler: handlers.Bootcamp,
		CourseHandler:   handlers.Course,
		ReviewHandler:   handlers.Review,
	})
}
