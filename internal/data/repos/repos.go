package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/devcamper-backend/internal/data/repos/directory"
	"github.com/yungbote/devcamper-backend/internal/data/repos/user"
	"github.com/yungbote/devcamper-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type BootcampRepo = directory.BootcampRepo
type CourseRepo = directory.CourseRepo
type ReviewRepo = directory.ReviewRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewBootcampRepo(db *gorm.DB, baseLog *logger.Logger) BootcampRepo {
	return directory.NewBootcampRepo(db, baseLog)
}
func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return directory.NewCourseRepo(db, baseLog)
}
func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return directory.NewReviewRepo(db, baseLog)
}
