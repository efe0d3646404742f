package user

import (
	"context"

	"github.com/google/uuid"
	types "github.com/yungbote/yanxue-backend/internal/domain"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error)
	Exists(ctx context.Context, tx *gorm.DB, email, username string) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, userID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error)
	UpsertByEmail(ctx context.Context, tx *gorm.DB, u *types.User) error
}

// columns overwritten when a test account is re-seeded over an existing email.
var upsertColumns = []string{"username", "password", "role", "updated_at"}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

// session binds ctx to tx, or to the repo's own handle when tx is nil.
func (ur *userRepo) session(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx == nil {
		tx = ur.db
	}
	return tx.WithContext(ctx)
}

func (ur *userRepo) Create(ctx context.Context, tx *gorm.DB, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := ur.session(ctx, tx).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (ur *userRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.User, error) {
	var out []*types.User
	err := ur.session(ctx, tx).Order("created_at ASC").Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ur *userRepo) GetByIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) ([]*types.User, error) {
	return ur.findIn(ctx, tx, "id", userIDs, len(userIDs))
}

func (ur *userRepo) GetByEmails(ctx context.Context, tx *gorm.DB, userEmails []string) ([]*types.User, error) {
	return ur.findIn(ctx, tx, "email", userEmails, len(userEmails))
}

func (ur *userRepo) findIn(ctx context.Context, tx *gorm.DB, column string, values any, n int) ([]*types.User, error) {
	out := []*types.User{}
	if n == 0 {
		return out, nil
	}
	if err := ur.session(ctx, tx).Where(column+" IN ?", values).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Exists reports whether any user already holds the email or the username.
func (ur *userRepo) Exists(ctx context.Context, tx *gorm.DB, email, username string) (bool, error) {
	var n int64
	err := ur.session(ctx, tx).
		Model(&types.User{}).
		Where("email = ?", email).
		Or("username = ?", username).
		Count(&n).Error
	return n > 0, err
}

func (ur *userRepo) Update(ctx context.Context, tx *gorm.DB, userID uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return ur.session(ctx, tx).Model(&types.User{}).Where("id = ?", userID).Updates(updates).Error
}

func (ur *userRepo) Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (bool, error) {
	res := ur.session(ctx, tx).Delete(&types.User{}, "id = ?", userID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpsertByEmail inserts u, or overwrites username, password and role of the
// user that already owns u.Email.
func (ur *userRepo) UpsertByEmail(ctx context.Context, tx *gorm.DB, u *types.User) error {
	return ur.session(ctx, tx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(u).Error
}
