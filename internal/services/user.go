package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/yanxue-backend/internal/data/repos"
	"github.com/yungbote/yanxue-backend/internal/data/repos/dberr"
	types "github.com/yungbote/yanxue-backend/internal/domain"
	"github.com/yungbote/yanxue-backend/internal/platform/apierr"
	"github.com/yungbote/yanxue-backend/internal/platform/logger"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

const minPasswordLen = 6

// validateUserFields checks the optional-or-present fields shared by
// register, create and update. Empty values are skipped.
func validateUserFields(email, password, role string) error {
	if email != "" && !emailPattern.MatchString(email) {
		return apierr.BadRequest("invalid_email", "Please add a valid email")
	}
	if password != "" && len(password) < minPasswordLen {
		return apierr.BadRequest("invalid_password", fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}
	if role != "" && !types.ValidRole(role) {
		return apierr.BadRequest("invalid_role", fmt.Sprintf("Invalid role %q", role))
	}
	return nil
}

type UserInput struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
}

type UserService interface {
	List(ctx context.Context) ([]*types.User, error)
	Create(ctx context.Context, in UserInput) (*types.User, error)
	Get(ctx context.Context, id uuid.UUID) (*types.User, error)
	Update(ctx context.Context, id uuid.UUID, in UserInput) (*types.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpsertTestAccount(ctx context.Context, acct TestAccount) (*types.User, error)
}

type userService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), userRepo: userRepo}
}

func (us *userService) List(ctx context.Context) ([]*types.User, error) {
	users, err := us.userRepo.List(ctx, nil)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	return users, nil
}

func (us *userService) Create(ctx context.Context, in UserInput) (*types.User, error) {
	username, email, password, role := deref(in.Username), deref(in.Email), deref(in.Password), deref(in.Role)
	switch {
	case strings.TrimSpace(username) == "":
		return nil, apierr.BadRequest("missing_fields", "Please add a username")
	case strings.TrimSpace(email) == "":
		return nil, apierr.BadRequest("missing_fields", "Please add an email")
	case password == "":
		return nil, apierr.BadRequest("missing_fields", "Please add a password")
	}
	email = strings.TrimSpace(email)
	if err := validateUserFields(email, password, role); err != nil {
		return nil, err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	created, err := us.userRepo.Create(ctx, nil, []*types.User{{
		Username: strings.TrimSpace(username),
		Email:    email,
		Password: hash,
		Role:     role,
	}})
	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, apierr.BadRequest("user_exists", "User already exists")
		}
		return nil, apierr.Internal(err)
	}
	return created[0], nil
}

func (us *userService) Get(ctx context.Context, id uuid.UUID) (*types.User, error) {
	users, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if len(users) == 0 {
		return nil, apierr.NotFound("User not found")
	}
	return users[0], nil
}

func (us *userService) Update(ctx context.Context, id uuid.UUID, in UserInput) (*types.User, error) {
	updates := map[string]any{}
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if name == "" {
			return nil, apierr.BadRequest("missing_fields", "Please add a username")
		}
		updates["username"] = name
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			return nil, apierr.BadRequest("missing_fields", "Please add an email")
		}
		updates["email"] = email
	}
	if in.Role != nil {
		if !types.ValidRole(*in.Role) {
			return nil, apierr.BadRequest("invalid_role", fmt.Sprintf("Invalid role %q", *in.Role))
		}
		updates["role"] = *in.Role
	}
	if err := validateUserFields(deref(in.Email), deref(in.Password), ""); err != nil {
		return nil, err
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, apierr.BadRequest("invalid_password", "Please add a password")
		}
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, apierr.Internal(err)
		}
		updates["password"] = hash
	}

	if _, err := us.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := us.userRepo.Update(ctx, nil, id, updates); err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, apierr.BadRequest("user_exists", "User already exists")
		}
		return nil, apierr.Internal(err)
	}
	return us.Get(ctx, id)
}

func (us *userService) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := us.userRepo.Delete(ctx, nil, id)
	if err != nil {
		return apierr.Internal(err)
	}
	if !ok {
		return apierr.NotFound("User not found")
	}
	return nil
}

// UpsertTestAccount stores the configured test account with a fresh bcrypt
// hash, creating it or overwriting the user that owns the email.
func (us *userService) UpsertTestAccount(ctx context.Context, acct TestAccount) (*types.User, error) {
	if !acct.Enabled() {
		return nil, fmt.Errorf("test account needs TEST_EMAIL and TEST_PASSWORD")
	}
	if acct.Username == "" {
		acct.Username = "testuser"
	}
	if acct.Role == "" {
		acct.Role = types.RoleAdmin
	}
	if err := validateUserFields(acct.Email, acct.Password, acct.Role); err != nil {
		return nil, err
	}
	hash, err := HashPassword(acct.Password)
	if err != nil {
		return nil, err
	}
	u := &types.User{
		Username: acct.Username,
		Email:    strings.TrimSpace(acct.Email),
		Password: hash,
		Role:     acct.Role,
	}
	if err := us.userRepo.UpsertByEmail(ctx, nil, u); err != nil {
		return nil, fmt.Errorf("upsert test account: %w", err)
	}
	users, err := us.userRepo.GetByEmails(ctx, nil, []string{u.Email})
	if err != nil {
		return nil, fmt.Errorf("reload test account: %w", err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("test account %s vanished after upsert", u.Email)
	}
	us.log.Info("test account stored", "user_id", users[0].ID.String())
	return users[0], nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
