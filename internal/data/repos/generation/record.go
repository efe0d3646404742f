package generation

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/yanxue-backend/internal/domain"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
	"gorm.io/gorm"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// RecordRepo is append-only: there is no update or delete.
type RecordRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rec *types.GenerationRecord) (*types.GenerationRecord, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.GenerationRecord, error)
	ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*types.GenerationRecord, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.GenerationRecord, error)
}

type recordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecordRepo {
	return &recordRepo{db: db, log: baseLog.With("repo", "GenerationRecordRepo")}
}

func (r *recordRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *recordRepo) Create(ctx context.Context, tx *gorm.DB, rec *types.GenerationRecord) (*types.GenerationRecord, error) {
	if err := r.conn(ctx, tx).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByID returns (nil, nil) when no record has the id.
func (r *recordRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.GenerationRecord, error) {
	var found []*types.GenerationRecord
	if err := r.conn(ctx, tx).Where("id = ?", id).Limit(1).Find(&found).Error; err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0], nil
}

// ListByCourse returns the course's records in insertion order.
func (r *recordRepo) ListByCourse(ctx context.Context, tx *gorm.DB, courseID string) ([]*types.GenerationRecord, error) {
	recs := []*types.GenerationRecord{}
	if courseID == "" {
		return recs, nil
	}
	err := r.conn(ctx, tx).
		Where("course_id = ?", courseID).
		Order("created_at ASC, id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (r *recordRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*types.GenerationRecord, error) {
	if limit <= 0 || limit > maxRecentLimit {
		limit = defaultRecentLimit
	}
	recs := []*types.GenerationRecord{}
	err := r.conn(ctx, tx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}
