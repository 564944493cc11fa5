package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/courserate-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		Password: "pw",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, code string) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:    uuid.New(),
		Code:  code,
		Title: code + " title",
		Slug:  code,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

// SeedReview inserts a review with every score set to rating unless overridden by mutate.
func SeedReview(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID, rating int, mutate ...func(*types.Review)) *types.Review {
	tb.Helper()
	r := &types.Review{
		ID:            uuid.New(),
		UserID:        userID,
		CourseID:      courseID,
		Professor:     "Prof",
		Semester:      "Fall",
		Grade:         "A",
		Rating:        rating,
		Difficulty:    rating,
		Workload:      rating,
		LearningValue: rating,
		Comment:       "ok",
	}
	for _, fn := range mutate {
		fn(r)
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed review: %v", err)
	}
	return r
}
