package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/courserate-backend/internal/data/repos"
	repotest "github.com/yungbote/courserate-backend/internal/data/repos/testutil"
	types "github.com/yungbote/courserate-backend/internal/domain"
	domainagg "github.com/yungbote/courserate-backend/internal/domain/aggregates"
	"github.com/yungbote/courserate-backend/internal/platform/dbctx"
)

type reviewFixture struct {
	db      *gorm.DB
	agg     domainagg.ReviewAggregate
	courses repos.CourseRepo
	reviews repos.ReviewRepo
	hooks   *spyHooks
}

func newReviewFixture(t *testing.T) reviewFixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	f := reviewFixture{
		db:      db,
		courses: repos.NewCourseRepo(db, log),
		reviews: repos.NewReviewRepo(db, log),
		hooks:   &spyHooks{},
	}
	f.agg = NewReviewAggregate(ReviewAggregateDeps{
		Base: BaseDeps{
			DB:    db,
			Log:   log,
			Hooks: f.hooks,
			Sleep: noSleep,
		},
		Users:   repos.NewUserRepo(db, log),
		Courses: f.courses,
		Reviews: f.reviews,
	})
	return f
}

func (f reviewFixture) course(t *testing.T, id uuid.UUID) *types.Course {
	t.Helper()
	c, err := f.courses.GetByID(dbctx.Context{Ctx: context.Background()}, id)
	if err != nil || c == nil {
		t.Fatalf("load course: got=%+v err=%v", c, err)
	}
	return c
}

func sp(s string) *string { return &s }
func ip(i int) *int       { return &i }

func reviewPayload(rating int) domainagg.ReviewFields {
	return domainagg.ReviewFields{
		Professor:     sp("Dr. Ada"),
		Semester:      sp("Spring 2026"),
		Grade:         sp("A-"),
		Rating:        ip(rating),
		Difficulty:    ip(rating),
		Workload:      ip(rating),
		LearningValue: ip(rating),
		Comment:       sp("useful"),
	}
}

func TestReviewAggregateCreateMaintainsSetsAndStats(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	ada := repotest.SeedUser(t, ctx, f.db, "ada")
	course := repotest.SeedCourse(t, ctx, f.db, "cs-101")

	created, err := f.agg.Create(ctx, domainagg.CreateReviewInput{
		Identity:  ada.ID,
		CourseRef: course.Slug,
		Fields:    reviewPayload(4),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.UserID != ada.ID || created.CourseID != course.ID {
		t.Fatalf("Create: wrong references %+v", created)
	}

	dbc := dbctx.Context{Ctx: ctx}
	courseIDs, err := f.reviews.ListIDsByCourseID(dbc, course.ID)
	if err != nil {
		t.Fatalf("ListIDsByCourseID: %v", err)
	}
	userIDs, err := f.reviews.ListIDsByUserID(dbc, ada.ID)
	if err != nil {
		t.Fatalf("ListIDsByUserID: %v", err)
	}
	if countID(courseIDs, created.ID) != 1 || countID(userIDs, created.ID) != 1 {
		t.Fatalf("review id must appear exactly once: course=%v user=%v", courseIDs, userIDs)
	}

	c := f.course(t, course.ID)
	if c.AverageRating != 4 || c.AverageLearningValue != 4 || c.ReviewCount != 1 {
		t.Fatalf("stats after create: %+v", c)
	}
	if len(f.hooks.Operations) != 1 || f.hooks.Operations[0].Status != "success" {
		t.Fatalf("hooks: %+v", f.hooks.Operations)
	}
}

func TestReviewAggregateCreateResolvesCourseByID(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	ada := repotest.SeedUser(t, ctx, f.db, "ada")
	course := repotest.SeedCourse(t, ctx, f.db, "cs-101")

	created, err := f.agg.Create(ctx, domainagg.CreateReviewInput{
		Identity:  ada.ID,
		CourseRef: course.ID.String(),
		Fields:    reviewPayload(2),
	})
	if err != nil {
		t.Fatalf("Create by id: %v", err)
	}
	if created.CourseID != course.ID {
		t.Fatalf("course id: want=%s got=%s", course.ID, created.CourseID)
	}
}

func TestReviewAggregateCreateFailures(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	ada := repotest.SeedUser(t, ctx, f.db, "ada")
	course := repotest.SeedCourse(t, ctx, f.db, "cs-101")

	_, err := f.agg.Create(ctx, domainagg.CreateReviewInput{Identity: ada.ID, CourseRef: "nope", Fields: reviewPayload(3)})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown course: want not_found got=%v", err)
	}

	_, err = f.agg.Create(ctx, domainagg.CreateReviewInput{Identity: ada.ID, CourseRef: course.Slug, Fields: reviewPayload(6)})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("rating=6: want validation got=%v", err)
	}

	missing := reviewPayload(3)
	missing.Comment = nil
	_, err = f.agg.Create(ctx, domainagg.CreateReviewInput{Identity: ada.ID, CourseRef: course.Slug, Fields: missing})
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("missing comment: want validation got=%v", err)
	}

	_, err = f.agg.Create(ctx, domainagg.CreateReviewInput{Identity: uuid.New(), CourseRef: course.Slug, Fields: reviewPayload(3)})
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown user: want not_found got=%v", err)
	}

	c := f.course(t, course.ID)
	if c.ReviewCount != 0 || c.AverageRating != 0 {
		t.Fatalf("failed creates must not change stats: %+v", c)
	}
}

func TestReviewAggregateAveragesFollowTheReviewSet(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	course := repotest.SeedCourse(t, ctx, f.db, "math-200")

	var ids []uuid.UUID
	var owners []uuid.UUID
	for i, rating := range []int{5, 3, 4} {
		u := repotest.SeedUser(t, ctx, f.db, "user"+string(rune('a'+i)))
		r, err := f.agg.Create(ctx, domainagg.CreateReviewInput{Identity: u.ID, CourseRef: course.Slug, Fields: reviewPayload(rating)})
		if err != nil {
			t.Fatalf("Create rating=%d: %v", rating, err)
		}
		ids = append(ids, r.ID)
		owners = append(owners, u.ID)
	}

	c := f.course(t, course.ID)
	if c.AverageRating != 4.0 || c.ReviewCount != 3 {
		t.Fatalf("ratings [5,3,4]: want=4.0 got=%v count=%d", c.AverageRating, c.ReviewCount)
	}

	if _, err := f.agg.Delete(ctx, owners[1], ids[1]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	c = f.course(t, course.ID)
	if c.AverageRating != 4.5 || c.ReviewCount != 2 {
		t.Fatalf("after deleting the 3: want=4.5 got=%v count=%d", c.AverageRating, c.ReviewCount)
	}
}

func TestReviewAggregateDeletingOnlyReviewResetsStats(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	ada := repotest.SeedUser(t, ctx, f.db, "ada")
	course := repotest.SeedCourse(t, ctx, f.db, "cs-101")

	r, err := f.agg.Create(ctx, domainagg.CreateReviewInput{Identity: ada.ID, CourseRef: course.Slug, Fields: reviewPayload(5)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	deleted, err := f.agg.Delete(ctx, ada.ID, r.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted.ID != r.ID {
		t.Fatalf("Delete returned %s, want %s", deleted.ID, r.ID)
	}

	c := f.course(t, course.ID)
	if c.AverageRating != 0 || c.AverageDifficulty != 0 || c.AverageWorkload != 0 || c.AverageLearningValue != 0 || c.ReviewCount != 0 {
		t.Fatalf("stats must reset to exactly 0: %+v", c)
	}

	ids, err := f.reviews.ListIDsByUserID(dbctx.Context{Ctx: ctx}, ada.ID)
	if err != nil || len(ids) != 0 {
		t.Fatalf("user set after delete: ids=%v err=%v", ids, err)
	}

	_, err = f.agg.Get(ctx, ada.ID, r.ID)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("Get after delete: want not_found got=%v", err)
	}
	_, err = f.agg.Delete(ctx, ada.ID, r.ID)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("second Delete: want not_found got=%v", err)
	}
}

func TestReviewAggregateOwnership(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	ada := repotest.SeedUser(t, ctx, f.db, "ada")
	eve := repotest.SeedUser(t, ctx, f.db, "eve")
	course := repotest.SeedCourse(t, ctx, f.db, "cs-101")

	r, err := f.agg.Create(ctx, domainagg.CreateReviewInput{Identity: ada.ID, CourseRef: course.Slug, Fields: reviewPayload(4)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.agg.Get(ctx, eve.ID, r.ID); !domainagg.IsCode(err, domainagg.CodeForbidden) {
		t.Fatalf("Get by non-owner: want forbidden got=%v", err)
	}
	if _, err := f.agg.Update(ctx, domainagg.UpdateReviewInput{Identity: eve.ID, ReviewID: r.ID, Fields: domainagg.ReviewFields{Rating: ip(1)}}); !domainagg.IsCode(err, domainagg.CodeForbidden) {
		t.Fatalf("Update by non-owner: want forbidden got=%v", err)
	}
	if _, err := f.agg.Delete(ctx, eve.ID, r.ID); !domainagg.IsCode(err, domainagg.CodeForbidden) {
		t.Fatalf("Delete by non-owner: want forbidden got=%v", err)
	}

	got, err := f.agg.Get(ctx, ada.ID, r.ID)
	if err != nil {
		t.Fatalf("Get by owner: %v", err)
	}
	if got.Rating != 4 {
		t.Fatalf("non-owner attempts must not change the review: %+v", got)
	}
	if c := f.course(t, course.ID); c.AverageRating != 4 {
		t.Fatalf("non-owner attempts must not change stats: %+v", c)
	}
}

func TestReviewAggregateUpdateMergesFields(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()
	ada := repotest.SeedUser(t, ctx, f.db, "ada")
	course := repotest.SeedCourse(t, ctx, f.db, "cs-101")

	r, err := f.agg.Create(ctx, domainagg.CreateReviewInput{Identity: ada.ID, CourseRef: course.Slug, Fields: reviewPayload(2)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := f.agg.Update(ctx, domainagg.UpdateReviewInput{
		Identity: ada.ID,
		ReviewID: r.ID,
		Fields:   domainagg.ReviewFields{Rating: ip(5), Comment: sp("changed my mind")},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Rating != 5 || updated.Comment != "changed my mind" {
		t.Fatalf("supplied fields not applied: %+v", updated)
	}
	if updated.Professor != "Dr. Ada" || updated.Difficulty != 2 || updated.Workload != 2 || updated.Grade != "A-" {
		t.Fatalf("omitted fields changed: %+v", updated)
	}

	c := f.course(t, course.ID)
	if c.AverageRating != 5 || c.AverageDifficulty != 2 {
		t.Fatalf("stats after update: %+v", c)
	}

	if _, err := f.agg.Update(ctx, domainagg.UpdateReviewInput{Identity: ada.ID, ReviewID: r.ID, Fields: domainagg.ReviewFields{Grade: sp(" ")}}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("blank grade: want validation got=%v", err)
	}
	if _, err := f.agg.Update(ctx, domainagg.UpdateReviewInput{Identity: ada.ID, ReviewID: r.ID, Fields: domainagg.ReviewFields{Workload: ip(0)}}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("workload=0: want validation got=%v", err)
	}

	same, err := f.agg.Update(ctx, domainagg.UpdateReviewInput{Identity: ada.ID, ReviewID: r.ID})
	if err != nil {
		t.Fatalf("empty Update: %v", err)
	}
	if same.Rating != 5 {
		t.Fatalf("empty Update should return the stored review: %+v", same)
	}

	if _, err := f.agg.Update(ctx, domainagg.UpdateReviewInput{Identity: ada.ID, ReviewID: uuid.New(), Fields: domainagg.ReviewFields{Rating: ip(3)}}); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unknown review: want not_found got=%v", err)
	}
}

func TestSummarizeScores(t *testing.T) {
	if got := SummarizeScores(nil); got != (types.CourseStats{}) {
		t.Fatalf("empty set: %+v", got)
	}
	got := SummarizeScores([]types.ReviewScores{
		{Rating: 5, Difficulty: 1, Workload: 2, LearningValue: 3},
		{Rating: 4, Difficulty: 2, Workload: 2, LearningValue: 4},
	})
	want := types.CourseStats{AverageRating: 4.5, AverageDifficulty: 1.5, AverageWorkload: 2, AverageLearningValue: 3.5, ReviewCount: 2}
	if got != want {
		t.Fatalf("SummarizeScores: want=%+v got=%+v", want, got)
	}
	thirds := SummarizeScores([]types.ReviewScores{{Rating: 1}, {Rating: 1}, {Rating: 2}})
	if thirds.AverageRating != 4.0/3.0 {
		t.Fatalf("means are unrounded: got=%v", thirds.AverageRating)
	}
}

func countID(ids []uuid.UUID, id uuid.UUID) int {
	n := 0
	for _, v := range ids {
		if v == id {
			n++
		}
	}
	return n
}
