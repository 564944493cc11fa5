package catalog

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/courserate-backend/internal/domain"
	"github.com/yungbote/courserate-backend/internal/platform/dbctx"
	"github.com/yungbote/courserate-backend/internal/platform/logger"
)

type CourseRepo interface {
	Create(dbc dbctx.Context, rows []*types.Course) ([]*types.Course, error)

	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Course, error)
	GetByCode(dbc dbctx.Context, code string) (*types.Course, error)
	List(dbc dbctx.Context) ([]*types.Course, error)

	// LockByID takes a row lock for the rest of the transaction. No-op lock on SQLite.
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error)

	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) Create(dbc dbctx.Context, rows []*types.Course) ([]*types.Course, error) {
	if len(rows) == 0 {
		return []*types.Course{}, nil
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

func (r *courseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.findOne(dbc.DB(r.db), "id = ?", id)
}

func (r *courseRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Course, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	return r.findOne(dbc.DB(r.db), "slug = ?", slug)
}

func (r *courseRepo) GetByCode(dbc dbctx.Context, code string) (*types.Course, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	return r.findOne(dbc.DB(r.db), "code = ?", code)
}

func (r *courseRepo) List(dbc dbctx.Context) ([]*types.Course, error) {
	var out []*types.Course
	if err := dbc.DB(r.db).Order("created_at DESC, id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Course, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.DB(r.db)
	if t.Dialector.Name() != "sqlite" {
		t = t.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.findOne(t, "id = ?", id)
}

func (r *courseRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).
		Model(&types.Course{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *courseRepo) findOne(t *gorm.DB, query string, arg interface{}) (*types.Course, error) {
	var row types.Course
	if err := t.Where(query, arg).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
