package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/courserate-backend/internal/data/aggregates"
	"github.com/yungbote/courserate-backend/internal/data/cache"
	"github.com/yungbote/courserate-backend/internal/data/repos"
	types "github.com/yungbote/courserate-backend/internal/domain"
	domainagg "github.com/yungbote/courserate-backend/internal/domain/aggregates"
	"github.com/yungbote/courserate-backend/internal/platform/apierr"
	"github.com/yungbote/courserate-backend/internal/platform/dbctx"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
)

type CreateCourseInput struct {
	Code  string `json:"code"`
	Title string `json:"title"`
}

type CourseDetail struct {
	Course  *types.Course             `json:"course"`
	Reviews []*types.ReviewWithAuthor `json:"reviews"`
}

type CourseService interface {
	Create(ctx context.Context, in CreateCourseInput) (*types.Course, error)
	List(ctx context.Context) ([]*types.Course, error)
	GetBySlug(ctx context.Context, slug string) (*types.Course, error)
	GetDetail(ctx context.Context, slug string) (*CourseDetail, error)
	// Invalidate drops the cached row after its statistics changed. A committed write
	// must reach the cache even when ctx is already canceled. An empty slug is looked up by id.
	Invalidate(ctx context.Context, courseID uuid.UUID, slug string)
}

const invalidateTimeout = 2 * time.Second

type courseService struct {
	log        *logger.Logger
	courseRepo repos.CourseRepo
	reviewRepo repos.ReviewRepo
	cache      cache.CourseCache
}

func NewCourseService(log *logger.Logger, courseRepo repos.CourseRepo, reviewRepo repos.ReviewRepo, courseCache cache.CourseCache) CourseService {
	if courseCache == nil {
		courseCache = cache.NewNoopCourseCache()
	}
	return &courseService{
		log:        log.With("service", "CourseService"),
		courseRepo: courseRepo,
		reviewRepo: reviewRepo,
		cache:      courseCache,
	}
}

func (cs *courseService) Create(ctx context.Context, in CreateCourseInput) (*types.Course, error) {
	code := strings.TrimSpace(in.Code)
	title := strings.TrimSpace(in.Title)
	if code == "" || title == "" {
		return nil, apierr.BadRequest(string(domainagg.CodeValidation), "code and title are required")
	}
	slug := Slugify(code)
	if slug == "" {
		return nil, apierr.BadRequest(string(domainagg.CodeValidation), "code must contain letters or digits")
	}

	dbc := dbctx.Context{Ctx: ctx}
	if existing, err := cs.courseRepo.GetByCode(dbc, code); err != nil {
		return nil, apierr.Internal(err)
	} else if existing != nil {
		return nil, apierr.Conflict("course_exists", "course already exists")
	}
	if existing, err := cs.courseRepo.GetBySlug(dbc, slug); err != nil {
		return nil, apierr.Internal(err)
	} else if existing != nil {
		return nil, apierr.Conflict("course_exists", fmt.Sprintf("course code collides with existing slug %q", slug))
	}

	course := &types.Course{
		ID:    uuid.New(),
		Code:  code,
		Title: title,
		Slug:  slug,
	}
	if _, err := cs.courseRepo.Create(dbc, []*types.Course{course}); err != nil {
		if domainagg.IsCode(aggregates.MapError("Course.Create", err), domainagg.CodeConflict) {
			return nil, apierr.Conflict("course_exists", "course already exists")
		}
		return nil, apierr.Internal(fmt.Errorf("create course: %w", err))
	}
	cs.log.Info("course created", "course_id", course.ID, "slug", slug)
	return course, nil
}

func (cs *courseService) List(ctx context.Context) ([]*types.Course, error) {
	out, err := cs.courseRepo.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if out == nil {
		out = []*types.Course{}
	}
	return out, nil
}

func (cs *courseService) GetBySlug(ctx context.Context, slug string) (*types.Course, error) {
	slug = strings.TrimSpace(slug)
	if cached, ok := cs.cache.Get(ctx, slug); ok {
		return cached, nil
	}
	course, err := cs.courseRepo.GetBySlug(dbctx.Context{Ctx: ctx}, slug)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if course == nil {
		return nil, apierr.NotFound(string(domainagg.CodeNotFound), "course not found")
	}
	cs.cache.Set(ctx, course)
	return course, nil
}

func (cs *courseService) GetDetail(ctx context.Context, slug string) (*CourseDetail, error) {
	course, err := cs.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	reviews, err := cs.reviewRepo.ListByCourseID(dbctx.Context{Ctx: ctx}, course.ID)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if reviews == nil {
		reviews = []*types.ReviewWithAuthor{}
	}
	return &CourseDetail{Course: course, Reviews: reviews}, nil
}

func (cs *courseService) Invalidate(ctx context.Context, courseID uuid.UUID, slug string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()

	slug = strings.TrimSpace(slug)
	if slug == "" {
		course, err := cs.courseRepo.GetByID(dbctx.Context{Ctx: ctx}, courseID)
		if err != nil {
			cs.log.Warn("course cache invalidation lookup failed", "course_id", courseID, "error", err)
			return
		}
		if course == nil {
			return
		}
		slug = course.Slug
	}
	cs.cache.Invalidate(ctx, slug)
}
