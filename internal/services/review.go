package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/courserate-backend/internal/data/repos"
	types "github.com/yungbote/courserate-backend/internal/domain"
	domainagg "github.com/yungbote/courserate-backend/internal/domain/aggregates"
	"github.com/yungbote/courserate-backend/internal/platform/apierr"
	"github.com/yungbote/courserate-backend/internal/platform/ctxutil"
	"github.com/yungbote/courserate-backend/internal/platform/dbctx"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
)

// ReviewService exposes the review aggregate to handlers. Identity always comes from ctx.
type ReviewService interface {
	Create(ctx context.Context, courseRef string, fields domainagg.ReviewFields) (*types.Review, error)
	Get(ctx context.Context, reviewID uuid.UUID) (*types.Review, error)
	Update(ctx context.Context, reviewID uuid.UUID, fields domainagg.ReviewFields) (*types.Review, error)
	Delete(ctx context.Context, reviewID uuid.UUID) error
	ListByCourse(ctx context.Context, slug string) ([]*types.ReviewWithAuthor, error)
	ListMine(ctx context.Context) ([]*types.Review, error)
}

type reviewService struct {
	log        *logger.Logger
	aggregate  domainagg.ReviewAggregate
	reviewRepo repos.ReviewRepo
	courses    CourseService
}

func NewReviewService(log *logger.Logger, aggregate domainagg.ReviewAggregate, reviewRepo repos.ReviewRepo, courses CourseService) ReviewService {
	return &reviewService{
		log:        log.With("service", "ReviewService"),
		aggregate:  aggregate,
		reviewRepo: reviewRepo,
		courses:    courses,
	}
}

func identity(ctx context.Context, op string) (uuid.UUID, error) {
	id, ok := ctxutil.UserID(ctx)
	if !ok {
		return uuid.Nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "authentication required", nil)
	}
	return id, nil
}

func (rs *reviewService) Create(ctx context.Context, courseRef string, fields domainagg.ReviewFields) (*types.Review, error) {
	userID, err := identity(ctx, "Review.Create")
	if err != nil {
		return nil, err
	}
	created, err := rs.aggregate.Create(ctx, domainagg.CreateReviewInput{
		Identity:  userID,
		CourseRef: courseRef,
		Fields:    fields,
	})
	if err != nil {
		return nil, err
	}
	rs.courses.Invalidate(ctx, created.CourseID, created.CourseSlug)
	rs.log.Info("review created", "review_id", created.ID, "course_id", created.CourseID, "user_id", userID)
	return created, nil
}

func (rs *reviewService) Get(ctx context.Context, reviewID uuid.UUID) (*types.Review, error) {
	userID, err := identity(ctx, "Review.Get")
	if err != nil {
		return nil, err
	}
	return rs.aggregate.Get(ctx, userID, reviewID)
}

func (rs *reviewService) Update(ctx context.Context, reviewID uuid.UUID, fields domainagg.ReviewFields) (*types.Review, error) {
	userID, err := identity(ctx, "Review.Update")
	if err != nil {
		return nil, err
	}
	updated, err := rs.aggregate.Update(ctx, domainagg.UpdateReviewInput{
		Identity: userID,
		ReviewID: reviewID,
		Fields:   fields,
	})
	if err != nil {
		return nil, err
	}
	if !fields.IsEmpty() {
		rs.courses.Invalidate(ctx, updated.CourseID, updated.CourseSlug)
	}
	return updated, nil
}

func (rs *reviewService) Delete(ctx context.Context, reviewID uuid.UUID) error {
	userID, err := identity(ctx, "Review.Delete")
	if err != nil {
		return err
	}
	deleted, err := rs.aggregate.Delete(ctx, userID, reviewID)
	if err != nil {
		return err
	}
	rs.courses.Invalidate(ctx, deleted.CourseID, deleted.CourseSlug)
	rs.log.Info("review deleted", "review_id", reviewID, "course_id", deleted.CourseID, "user_id", userID)
	return nil
}

func (rs *reviewService) ListByCourse(ctx context.Context, slug string) ([]*types.ReviewWithAuthor, error) {
	detail, err := rs.courses.GetDetail(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	return detail.Reviews, nil
}

func (rs *reviewService) ListMine(ctx context.Context) ([]*types.Review, error) {
	userID, err := identity(ctx, "Review.ListMine")
	if err != nil {
		return nil, err
	}
	out, err := rs.reviewRepo.ListByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if out == nil {
		out = []*types.Review{}
	}
	return out, nil
}
