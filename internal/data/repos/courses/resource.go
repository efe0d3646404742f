package courses

import (
	"context"
	"strings"

	"github.com/google/uuid"
	types "github.com/yungbote/yanxue-backend/internal/domain"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ResourceRepo interface {
	Create(ctx context.Context, tx *gorm.DB, resources []*types.Resource) ([]*types.Resource, error)
	List(ctx context.Context, tx *gorm.DB, resourceType string) ([]*types.Resource, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, resourceIDs []uuid.UUID) ([]*types.Resource, error)
	Update(ctx context.Context, tx *gorm.DB, resourceID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, resourceID uuid.UUID) (bool, error)
}

type resourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResourceRepo(db *gorm.DB, baseLog *logger.Logger) ResourceRepo {
	return &resourceRepo{db: db, log: baseLog.With("repo", "ResourceRepo")}
}

func (r *resourceRepo) Create(ctx context.Context, tx *gorm.DB, resources []*types.Resource) ([]*types.Resource, error) {
	return insertAll(session(ctx, tx, r.db), resources)
}

// List returns every resource, or only those of resourceType when it is set.
func (r *resourceRepo) List(ctx context.Context, tx *gorm.DB, resourceType string) ([]*types.Resource, error) {
	q := session(ctx, tx, r.db).Order("created_at DESC")
	if t := strings.TrimSpace(resourceType); t != "" {
		q = q.Where("type = ?", t)
	}
	var out []*types.Resource
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resourceRepo) GetByIDs(ctx context.Context, tx *gorm.DB, resourceIDs []uuid.UUID) ([]*types.Resource, error) {
	return findByIDs[types.Resource](session(ctx, tx, r.db), resourceIDs)
}

func (r *resourceRepo) Update(ctx context.Context, tx *gorm.DB, resourceID uuid.UUID, updates map[string]any) error {
	return patch[types.Resource](session(ctx, tx, r.db), resourceID, updates)
}

func (r *resourceRepo) Delete(ctx context.Context, tx *gorm.DB, resourceID uuid.UUID) (bool, error) {
	return remove[types.Resource](session(ctx, tx, r.db), resourceID)
}
