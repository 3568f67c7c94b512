package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/devcamper-backend/internal/data/repos"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

type Repos struct {
	User     repos.UserRepo
	Bootcamp repos.BootcampRepo
	Course   repos.CourseRepo
	Review   repos.ReviewRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:     repos.NewUserRepo(db, log),
		Bootcamp: repos.NewBootcampRepo(db, log),
		Course:   repos.NewCourseRepo(db, log),
		Review:   repos.NewReviewRepo(db, log),
	}
}
