package app

import (
	"fmt"

	"gorm.io/gorm"

	dataagg "github.com/yungbote/devcamper-backend/internal/data/aggregates"
	"github.com/yungbote/devcamper-backend/internal/observability"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
	"github.com/yungbote/devcamper-backend/internal/services"
)

type Services struct {
	Rollups  *dataagg.BootcampRollups
	Auth     services.AuthService
	User     services.UserService
	Bootcamp services.BootcampService
	Course   services.CourseService
	Review   services.ReviewService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	rollups, err := dataagg.NewBootcampRollups(dataagg.RollupDeps{
		BaseDeps: dataagg.BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: dataagg.NewObservabilityHooks(metrics),
		},
	})
	if err != nil {
		return Services{}, fmt.Errorf("init rollups: %w", err)
	}

	return Services{
		Rollups: rollups,
		Auth: services.NewAuthService(db, log, reposet.User, clients.Mailer, services.AuthConfig{
			JWTSecret:  cfg.JWTSecret,
			JWTExpire:  cfg.JWTExpire,
			BcryptCost: cfg.BcryptCost,
		}),
		User:     services.NewUserService(db, log, reposet.User, cfg.BcryptCost),
		Bootcamp: services.NewBootcampService(db, log, reposet.Bootcamp, reposet.Course, reposet.Review, clients.Geocoder, clients.Photos, cfg.MaxFileUpload),
		Course:   services.NewCourseService(db, log, reposet.Course, reposet.Bootcamp, rollups.AverageCost),
		Review:   services.NewReviewService(db, log, reposet.Review, reposet.Bootcamp, rollups.AverageRating),
	}, nil
}
