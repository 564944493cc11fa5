package aggregates

import (
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/courserate-backend/internal/data/repos"
	"github.com/yungbote/courserate-backend/internal/domain"
	"github.com/yungbote/courserate-backend/internal/platform/dbctx"
)

// CourseStats recomputes the materialized statistics of a course from its review rows.
// Callers run it inside the same transaction as the review write that changed the set.
type CourseStats struct {
	Courses repos.CourseRepo
	Reviews repos.ReviewRepo
	Hooks   Hooks
}

func (s CourseStats) Recompute(dbc dbctx.Context, courseID uuid.UUID) (domain.CourseStats, error) {
	start := time.Now()
	scores, err := s.Reviews.ListScoresByCourseID(dbc, courseID)
	if err != nil {
		return domain.CourseStats{}, err
	}
	stats := SummarizeScores(scores)
	if err := s.Courses.UpdateFields(dbc, courseID, stats.Fields()); err != nil {
		return domain.CourseStats{}, err
	}
	if s.Hooks != nil {
		s.Hooks.ObserveRecompute(len(scores), time.Since(start))
	}
	return stats, nil
}

// SummarizeScores returns the unrounded mean of each score, or all zeros for an empty set.
func SummarizeScores(scores []domain.ReviewScores) domain.CourseStats {
	n := len(scores)
	if n == 0 {
		return domain.CourseStats{}
	}
	var rating, difficulty, workload, learning int
	for _, sc := range scores {
		rating += sc.Rating
		difficulty += sc.Difficulty
		workload += sc.Workload
		learning += sc.LearningValue
	}
	count := float64(n)
	return domain.CourseStats{
		AverageRating:        float64(rating) / count,
		AverageDifficulty:    float64(difficulty) / count,
		AverageWorkload:      float64(workload) / count,
		AverageLearningValue: float64(learning) / count,
		ReviewCount:          n,
	}
}
