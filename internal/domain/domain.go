package domain

import (
	"github.com/yungbote/courserate-backend/internal/domain/course"
	"github.com/yungbote/courserate-backend/internal/domain/review"
	"github.com/yungbote/courserate-backend/internal/domain/user"
)

const (
	MinReviewScore = review.MinScore
	MaxReviewScore = review.MaxScore
)

type User = user.User

type Course = course.Course
type CourseStats = course.Stats

type Review = review.Review
type ReviewScores = review.Scores
type ReviewWithAuthor = review.WithAuthor

// Models lists every persisted model in migration order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&Course{},
		&Review{},
	}
}
