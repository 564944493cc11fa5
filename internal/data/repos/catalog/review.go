package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/courserate-backend/internal/domain"
	"github.com/yungbote/courserate-backend/internal/platform/dbctx"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
)

// ReviewFilter narrows Find. Zero fields are ignored.
type ReviewFilter struct {
	CourseID uuid.UUID
	UserID   uuid.UUID
	IDs      []uuid.UUID
}

type ReviewRepo interface {
	Create(dbc dbctx.Context, rows []*types.Review) ([]*types.Review, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Review, error)
	Find(dbc dbctx.Context, filter ReviewFilter) ([]*types.Review, error)
	ListByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.ReviewWithAuthor, error)
	ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Review, error)

	// ListIDsByCourseID and ListIDsByUserID read the review-id sets of a course and a user.
	ListIDsByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]uuid.UUID, error)
	ListIDsByUserID(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)

	ListScoresByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]types.ReviewScores, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error)
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return &reviewRepo{db: db, log: baseLog.With("repo", "ReviewRepo")}
}

func (r *reviewRepo) Create(dbc dbctx.Context, rows []*types.Review) ([]*types.Review, error) {
	if len(rows) == 0 {
		return []*types.Review{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *reviewRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Review, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Review
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *reviewRepo) Find(dbc dbctx.Context, filter ReviewFilter) ([]*types.Review, error) {
	q := dbc.DB(r.db).Model(&types.Review{})
	if filter.CourseID != uuid.Nil {
		q = q.Where("course_id = ?", filter.CourseID)
	}
	if filter.UserID != uuid.Nil {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if len(filter.IDs) > 0 {
		q = q.Where("id IN ?", filter.IDs)
	}
	var out []*types.Review
	if err := q.Order("created_at DESC, id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewRepo) ListByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]*types.ReviewWithAuthor, error) {
	var out []*types.ReviewWithAuthor
	if courseID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Table("review").
		Select(`review.*, "user".username AS username`).
		Joins(`LEFT JOIN "user" ON "user".id = review.user_id`).
		Where("review.course_id = ?", courseID).
		Order("review.created_at DESC, review.id").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.Review, error) {
	if userID == uuid.Nil {
		return []*types.Review{}, nil
	}
	return r.Find(dbc, ReviewFilter{UserID: userID})
}

func (r *reviewRepo) ListIDsByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	return r.pluckIDs(dbc, "course_id = ?", courseID)
}

func (r *reviewRepo) ListIDsByUserID(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	return r.pluckIDs(dbc, "user_id = ?", userID)
}

func (r *reviewRepo) pluckIDs(dbc dbctx.Context, query string, id uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if id == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).Model(&types.Review{}).Where(query, id).Order("id").Pluck("id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewRepo) ListScoresByCourseID(dbc dbctx.Context, courseID uuid.UUID) ([]types.ReviewScores, error) {
	var out []types.ReviewScores
	if courseID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Model(&types.Review{}).
		Select("rating, difficulty, workload, learning_value").
		Where("course_id = ?", courseID).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *reviewRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Review{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *reviewRepo) DeleteByID(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	if id == uuid.Nil {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id = ?", id).Delete(&types.Review{})
	return res.RowsAffected, res.Error
}
