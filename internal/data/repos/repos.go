package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/courserate-backend/internal/data/repos/catalog"
	"github.com/yungbote/courserate-backend/internal/data/repos/user"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type CourseRepo = catalog.CourseRepo
type ReviewRepo = catalog.ReviewRepo
type ReviewFilter = catalog.ReviewFilter

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return catalog.NewCourseRepo(db, baseLog)
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return catalog.NewReviewRepo(db, baseLog)
}
