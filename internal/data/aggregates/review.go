package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/courserate-backend/internal/data/repos"
	"github.com/yungbote/courserate-backend/internal/domain"
	domainagg "github.com/yungbote/courserate-backend/internal/domain/aggregates"
	"github.com/yungbote/courserate-backend/internal/platform/dbctx"
)

type ReviewAggregateDeps struct {
	Base BaseDeps

	Users   repos.UserRepo
	Courses repos.CourseRepo
	Reviews repos.ReviewRepo
}

type reviewAggregate struct {
	deps  ReviewAggregateDeps
	stats CourseStats
}

func NewReviewAggregate(deps ReviewAggregateDeps) domainagg.ReviewAggregate {
	deps.Base = deps.Base.withDefaults()
	return &reviewAggregate{
		deps: deps,
		stats: CourseStats{
			Courses: deps.Courses,
			Reviews: deps.Reviews,
			Hooks:   deps.Base.Hooks,
		},
	}
}

func (a *reviewAggregate) Contract() domainagg.Contract {
	return domainagg.ReviewAggregateContract
}

func (a *reviewAggregate) Create(ctx context.Context, in domainagg.CreateReviewInput) (*domain.Review, error) {
	const op = "Review.Create"
	if in.Identity == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeUnauthenticated, op, "missing identity", nil)
	}
	if err := in.Fields.ValidateComplete(op); err != nil {
		return nil, err
	}
	ref := strings.TrimSpace(in.CourseRef)
	if ref == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing required fields: courseRef", nil)
	}
	if err := a.configured(op); err != nil {
		return nil, err
	}

	var out *domain.Review
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		course, err := a.resolveCourse(dbc, ref)
		if err != nil {
			return err
		}
		if course == nil {
			return domainagg.NewError(domainagg.CodeNotFound, op, "course not found", nil)
		}
		if _, err := a.deps.Courses.LockByID(dbc, course.ID); err != nil {
			return err
		}

		ok, err := a.deps.Users.Exists(dbc, in.Identity)
		if err != nil {
			return err
		}
		if !ok {
			return domainagg.NewError(domainagg.CodeNotFound, op, "user not found", nil)
		}

		row := &domain.Review{
			ID:       uuid.New(),
			UserID:   in.Identity,
			CourseID: course.ID,
		}
		in.Fields.Apply(row)
		if _, err := a.deps.Reviews.Create(dbc, []*domain.Review{row}); err != nil {
			return err
		}
		if _, err := a.stats.Recompute(dbc, course.ID); err != nil {
			return err
		}
		row.CourseSlug = course.Slug
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *reviewAggregate) Get(ctx context.Context, identity, reviewID uuid.UUID) (*domain.Review, error) {
	const op = "Review.Get"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	return a.loadOwned(dbctx.Context{Ctx: ctx}, op, identity, reviewID)
}

func (a *reviewAggregate) Update(ctx context.Context, in domainagg.UpdateReviewInput) (*domain.Review, error) {
	const op = "Review.Update"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	existing, err := a.loadOwned(dbctx.Context{Ctx: ctx}, op, in.Identity, in.ReviewID)
	if err != nil {
		return nil, err
	}
	if err := in.Fields.ValidatePartial(op); err != nil {
		return nil, err
	}
	if in.Fields.IsEmpty() {
		return existing, nil
	}

	var out *domain.Review
	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		locked, err := a.deps.Courses.LockByID(dbc, existing.CourseID)
		if err != nil {
			return err
		}
		// Re-read under the course lock; the review may have been deleted meanwhile.
		current, err := a.loadOwned(dbc, op, in.Identity, in.ReviewID)
		if err != nil {
			return err
		}
		if err := a.deps.Reviews.UpdateFields(dbc, current.ID, in.Fields.Updates()); err != nil {
			return err
		}
		if _, err := a.stats.Recompute(dbc, current.CourseID); err != nil {
			return err
		}
		updated, err := a.deps.Reviews.GetByID(dbc, current.ID)
		if err != nil {
			return err
		}
		if updated == nil {
			return InvariantError(fmt.Sprintf("review %s vanished inside its own transaction", current.ID))
		}
		updated.CourseSlug = slugOf(locked)
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *reviewAggregate) Delete(ctx context.Context, identity, reviewID uuid.UUID) (*domain.Review, error) {
	const op = "Review.Delete"
	if err := a.configured(op); err != nil {
		return nil, err
	}
	existing, err := a.loadOwned(dbctx.Context{Ctx: ctx}, op, identity, reviewID)
	if err != nil {
		return nil, err
	}

	err = executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		locked, err := a.deps.Courses.LockByID(dbc, existing.CourseID)
		if err != nil {
			return err
		}
		existing.CourseSlug = slugOf(locked)
		current, err := a.loadOwned(dbc, op, identity, reviewID)
		if err != nil {
			return err
		}
		n, err := a.deps.Reviews.DeleteByID(dbc, current.ID)
		if err != nil {
			return err
		}
		if n != 1 {
			return InvariantError(fmt.Sprintf("expected to delete 1 review, deleted %d", n))
		}
		if _, err := a.stats.Recompute(dbc, current.CourseID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return existing, nil
}

// loadOwned fetches a review and applies the ownership predicate.
func (a *reviewAggregate) loadOwned(dbc dbctx.Context, op string, identity, reviewID uuid.UUID) (*domain.Review, error) {
	if reviewID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "review not found", nil)
	}
	row, err := a.deps.Reviews.GetByID(dbc, reviewID)
	if err != nil {
		return nil, MapError(op, err)
	}
	if row == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "review not found", nil)
	}
	if err := domainagg.RequireOwner(op, identity, row); err != nil {
		return nil, err
	}
	return row, nil
}

func slugOf(c *domain.Course) string {
	if c == nil {
		return ""
	}
	return c.Slug
}

// resolveCourse accepts a course id or a slug.
func (a *reviewAggregate) resolveCourse(dbc dbctx.Context, ref string) (*domain.Course, error) {
	if id, err := uuid.Parse(ref); err == nil {
		course, err := a.deps.Courses.GetByID(dbc, id)
		if err != nil || course != nil {
			return course, err
		}
	}
	return a.deps.Courses.GetBySlug(dbc, ref)
}

func (a *reviewAggregate) configured(op string) error {
	if a.deps.Users == nil || a.deps.Courses == nil || a.deps.Reviews == nil {
		return domainagg.NewError(domainagg.CodeInternal, op, "review aggregate repos not configured", nil)
	}
	return nil
}
