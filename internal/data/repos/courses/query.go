package courses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// session prefers the caller's transaction over the repo handle.
func session(ctx context.Context, tx, fallback *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = fallback
	}
	return tx.WithContext(ctx)
}

func insertAll[T any](db *gorm.DB, rows []*T) ([]*T, error) {
	if len(rows) == 0 {
		return []*T{}, nil
	}
	if err := db.Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func findByIDs[T any](db *gorm.DB, ids []uuid.UUID) ([]*T, error) {
	out := []*T{}
	if len(ids) == 0 {
		return out, nil
	}
	if err := db.Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func patch[T any](db *gorm.DB, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return db.Model(new(T)).Where("id = ?", id).Updates(updates).Error
}

// remove reports false when no row had the id.
func remove[T any](db *gorm.DB, id uuid.UUID) (bool, error) {
	res := db.Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
