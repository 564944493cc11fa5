package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/courserate-backend/internal/data/aggregates"
	"github.com/yungbote/courserate-backend/internal/data/repos"
	repotest "github.com/yungbote/courserate-backend/internal/data/repos/testutil"
	types "github.com/yungbote/courserate-backend/internal/domain"
	domainagg "github.com/yungbote/courserate-backend/internal/domain/aggregates"
	"github.com/yungbote/courserate-backend/internal/platform/ctxutil"
)

func sp(s string) *string { return &s }
func ip(i int) *int       { return &i }

func fullFields(rating int) domainagg.ReviewFields {
	return domainagg.ReviewFields{
		Professor:     sp("Dr. Ada"),
		Semester:      sp("Fall 2025"),
		Grade:         sp("A"),
		Rating:        ip(rating),
		Difficulty:    ip(3),
		Workload:      ip(3),
		LearningValue: ip(4),
		Comment:       sp("recommended"),
	}
}

func asUser(id uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: id})
}

func TestReviewServiceLifecycle(t *testing.T) {
	db := repotest.DB(t)
	log := repotest.Logger(t)
	ctx := context.Background()

	cache := newSpyCourseCache()
	courseRepo := repos.NewCourseRepo(db, log)
	reviewRepo := repos.NewReviewRepo(db, log)
	courses := NewCourseService(log, courseRepo, reviewRepo, cache)
	agg := aggregates.NewReviewAggregate(aggregates.ReviewAggregateDeps{
		Base:    aggregates.BaseDeps{DB: db, Log: log},
		Users:   repos.NewUserRepo(db, log),
		Courses: courseRepo,
		Reviews: reviewRepo,
	})
	rs := NewReviewService(log, agg, reviewRepo, courses)

	ada := repotest.SeedUser(t, ctx, db, "ada")
	course := repotest.SeedCourse(t, ctx, db, "cs-101")

	if _, err := rs.Create(ctx, course.Slug, fullFields(5)); !domainagg.IsCode(err, domainagg.CodeUnauthenticated) {
		t.Fatalf("anonymous create: want unauthenticated got=%v", err)
	}

	created, err := rs.Create(asUser(ada.ID), course.Slug, fullFields(5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != course.Slug {
		t.Fatalf("create must invalidate course cache: %v", cache.invalidated)
	}

	listed, err := rs.ListByCourse(ctx, course.Slug)
	if err != nil || len(listed) != 1 || listed[0].Username != "ada" {
		t.Fatalf("ListByCourse: got=%+v err=%v", listed, err)
	}

	mine, err := rs.ListMine(asUser(ada.ID))
	if err != nil || len(mine) != 1 || mine[0].ID != created.ID {
		t.Fatalf("ListMine: got=%+v err=%v", mine, err)
	}

	if _, err := rs.Update(asUser(ada.ID), created.ID, domainagg.ReviewFields{}); err != nil {
		t.Fatalf("empty Update: %v", err)
	}
	if len(cache.invalidated) != 1 {
		t.Fatalf("empty update must not invalidate: %v", cache.invalidated)
	}
	if _, err := rs.Update(asUser(ada.ID), created.ID, domainagg.ReviewFields{Rating: ip(1)}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := rs.Delete(asUser(uuid.New()), created.ID); !domainagg.IsCode(err, domainagg.CodeForbidden) {
		t.Fatalf("stranger delete: want forbidden got=%v", err)
	}
	if err := rs.Delete(asUser(ada.ID), created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(cache.invalidated) != 3 {
		t.Fatalf("update and delete must invalidate: %v", cache.invalidated)
	}

	detail, err := courses.GetDetail(ctx, course.Slug)
	if err != nil {
		t.Fatalf("GetDetail: %v", err)
	}
	if detail.Course.ReviewCount != 0 || detail.Course.AverageRating != 0 || len(detail.Reviews) != 0 {
		t.Fatalf("course after delete: %+v", detail)
	}
}

// cancelAfterCommit cancels the request context as soon as a write has committed,
// like a client that disconnects while the response is being written.
type cancelAfterCommit struct {
	domainagg.ReviewAggregate
	cancel context.CancelFunc
}

func (a cancelAfterCommit) Create(ctx context.Context, in domainagg.CreateReviewInput) (*types.Review, error) {
	out, err := a.ReviewAggregate.Create(ctx, in)
	a.cancel()
	return out, err
}

func (a cancelAfterCommit) Update(ctx context.Context, in domainagg.UpdateReviewInput) (*types.Review, error) {
	out, err := a.ReviewAggregate.Update(ctx, in)
	a.cancel()
	return out, err
}

func (a cancelAfterCommit) Delete(ctx context.Context, identity, reviewID uuid.UUID) (*types.Review, error) {
	out, err := a.ReviewAggregate.Delete(ctx, identity, reviewID)
	a.cancel()
	return out, err
}

func TestReviewWritesInvalidateCacheAfterClientDisconnect(t *testing.T) {
	db := repotest.DB(t)
	log := repotest.Logger(t)
	ctx := context.Background()

	cache := newSpyCourseCache()
	courseRepo := repos.NewCourseRepo(db, log)
	reviewRepo := repos.NewReviewRepo(db, log)
	courses := NewCourseService(log, courseRepo, reviewRepo, cache)
	agg := aggregates.NewReviewAggregate(aggregates.ReviewAggregateDeps{
		Base:    aggregates.BaseDeps{DB: db, Log: log},
		Users:   repos.NewUserRepo(db, log),
		Courses: courseRepo,
		Reviews: reviewRepo,
	})

	ada := repotest.SeedUser(t, ctx, db, "ada")
	course := repotest.SeedCourse(t, ctx, db, "cs-101")

	if _, err := courses.GetBySlug(ctx, course.Slug); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	served := func(step string, wantRating float64, wantCount int) {
		t.Helper()
		got, err := courses.GetBySlug(ctx, course.Slug)
		if err != nil {
			t.Fatalf("%s GetBySlug: %v", step, err)
		}
		if got.AverageRating != wantRating || got.ReviewCount != wantCount {
			t.Fatalf("%s: want rating=%v count=%d got rating=%v count=%d", step, wantRating, wantCount, got.AverageRating, got.ReviewCount)
		}
	}

	reqCtx, cancel := context.WithCancel(asUser(ada.ID))
	rs := NewReviewService(log, cancelAfterCommit{ReviewAggregate: agg, cancel: cancel}, reviewRepo, courses)
	created, err := rs.Create(reqCtx, course.Slug, fullFields(5))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if reqCtx.Err() == nil {
		t.Fatalf("request context should be canceled after commit")
	}
	served("after create", 5, 1)

	reqCtx, cancel = context.WithCancel(asUser(ada.ID))
	rs = NewReviewService(log, cancelAfterCommit{ReviewAggregate: agg, cancel: cancel}, reviewRepo, courses)
	if _, err := rs.Update(reqCtx, created.ID, domainagg.ReviewFields{Rating: ip(2)}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	served("after update", 2, 1)

	reqCtx, cancel = context.WithCancel(asUser(ada.ID))
	rs = NewReviewService(log, cancelAfterCommit{ReviewAggregate: agg, cancel: cancel}, reviewRepo, courses)
	if err := rs.Delete(reqCtx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	served("after delete", 0, 0)

	if cache.dropped != 0 || len(cache.invalidated) != 3 {
		t.Fatalf("invalidations: want=3 dropped=0 got=%v dropped=%d", cache.invalidated, cache.dropped)
	}
}
