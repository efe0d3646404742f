package courses

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/yanxue-backend/internal/domain"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type CourseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Course, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Course, error)
	Update(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (bool, error)
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) Create(ctx context.Context, tx *gorm.DB, courses []*types.Course) ([]*types.Course, error) {
	return insertAll(session(ctx, tx, r.db), courses)
}

// List is newest first.
func (r *courseRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Course, error) {
	var out []*types.Course
	if err := session(ctx, tx, r.db).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *courseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, courseIDs []uuid.UUID) ([]*types.Course, error) {
	return findByIDs[types.Course](session(ctx, tx, r.db), courseIDs)
}

func (r *courseRepo) Update(ctx context.Context, tx *gorm.DB, courseID uuid.UUID, updates map[string]any) error {
	return patch[types.Course](session(ctx, tx, r.db), courseID, updates)
}

func (r *courseRepo) Delete(ctx context.Context, tx *gorm.DB, courseID uuid.UUID) (bool, error) {
	return remove[types.Course](session(ctx, tx, r.db), courseID)
}
