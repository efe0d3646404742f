package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/yanxue-backend/internal/data/repos"
	"github.com/yungbote/yanxue-backend/internal/data/repos/testutil"
	"github.com/yungbote/yanxue-backend/internal/platform/apierr"
	"github.com/yungbote/yanxue-backend/internal/platform/ctxutil"
)

func newAuth(t *testing.T, test TestAccount) (AuthService, repos.UserRepo) {
	t.Helper()
	db := testutil.DB(t)
	userRepo := repos.NewUserRepo(db, testutil.Logger(t))
	return NewAuthService(testutil.Logger(t), userRepo, "test-secret", time.Hour, test), userRepo
}

func requireAPIErr(t *testing.T, err error, status int, msg string) {
	t.Helper()
	var ae *apierr.Error
	require.True(t, errors.As(err, &ae), "expected *apierr.Error, got %T %v", err, err)
	assert.Equal(t, status, ae.Status)
	if msg != "" {
		assert.Equal(t, msg, ae.Error())
	}
}

func TestRegisterAndLogin(t *testing.T) {
	auth, _ := newAuth(t, TestAccount{})
	ctx := context.Background()

	res, err := auth.Register(ctx, RegisterInput{Username: "li", Email: "li@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "teacher", res.Role)
	assert.NotEmpty(t, res.Token)

	login, err := auth.Login(ctx, "li@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, res.ID, login.ID)

	_, err = auth.Login(ctx, "li@example.com", "wrong-password")
	requireAPIErr(t, err, http.StatusBadRequest, "Invalid credentials")
}

func TestRegisterRules(t *testing.T) {
	auth, _ := newAuth(t, TestAccount{})
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
		msg  string
	}{
		{"missing username", RegisterInput{Email: "a@b.co", Password: "secret1"}, "Missing required fields"},
		{"missing password", RegisterInput{Username: "a", Email: "a@b.co"}, "Missing required fields"},
		{"bad email", RegisterInput{Username: "a", Email: "not-an-email", Password: "secret1"}, "Please add a valid email"},
		{"short password", RegisterInput{Username: "a", Email: "a@b.co", Password: "12345"}, "Password must be at least 6 characters"},
		{"bad role", RegisterInput{Username: "a", Email: "a@b.co", Password: "secret1", Role: "user"}, `Invalid role "user"`},
	}
	for _, tc := range cases {
		_, err := auth.Register(ctx, tc.in)
		requireAPIErr(t, err, http.StatusBadRequest, tc.msg)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	auth, _ := newAuth(t, TestAccount{})
	ctx := context.Background()

	_, err := auth.Register(ctx, RegisterInput{Username: "wang", Email: "wang@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = auth.Register(ctx, RegisterInput{Username: "wang2", Email: "wang@example.com", Password: "secret1"})
	requireAPIErr(t, err, http.StatusBadRequest, "User already exists")

	_, err = auth.Register(ctx, RegisterInput{Username: "wang", Email: "other@example.com", Password: "secret1"})
	requireAPIErr(t, err, http.StatusBadRequest, "User already exists")
}

func TestLoginTestAccount(t *testing.T) {
	acct := TestAccount{Email: "test@example.com", Password: "testpassword123", Username: "tester", Role: "admin"}
	auth, _ := newAuth(t, acct)
	ctx := context.Background()

	res, err := auth.Login(ctx, "test@example.com", "testpassword123")
	require.NoError(t, err)
	assert.Equal(t, "tester", res.Username)
	assert.Equal(t, "admin", res.Role)
	assert.Equal(t, acct.UserID().String(), res.ID)

	authed, err := auth.SetContextFromToken(ctx, res.Token)
	require.NoError(t, err)
	rd := ctxutil.GetRequestData(authed)
	require.NotNil(t, rd)
	assert.Equal(t, acct.UserID(), rd.UserID)
	assert.Equal(t, "admin", rd.Role)
}

func TestLoginUnknownCredentials(t *testing.T) {
	auth, _ := newAuth(t, TestAccount{Email: "test@example.com", Password: "testpassword123"})
	_, err := auth.Login(context.Background(), "someone@example.com", "whatever1")
	requireAPIErr(t, err, http.StatusBadRequest, "Invalid credentials")

	_, err = auth.Login(context.Background(), "test@example.com", "")
	requireAPIErr(t, err, http.StatusBadRequest, "Missing required fields")
}

func TestTokenValidation(t *testing.T) {
	auth, _ := newAuth(t, TestAccount{})
	ctx := context.Background()

	id := uuid.New()
	tok, err := auth.IssueToken(id, "student")
	require.NoError(t, err)

	authed, err := auth.SetContextFromToken(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, id, ctxutil.GetRequestData(authed).UserID)

	_, err = auth.SetContextFromToken(ctx, tok+"x")
	requireAPIErr(t, err, http.StatusUnauthorized, "")

	other := NewAuthService(testutil.Logger(t), nil, "other-secret", time.Hour, TestAccount{})
	_, err = other.SetContextFromToken(ctx, tok)
	requireAPIErr(t, err, http.StatusUnauthorized, "")

	same, err := auth.SetContextFromToken(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, ctxutil.GetRequestData(same))
}

func TestExpiredToken(t *testing.T) {
	svc := NewAuthService(testutil.Logger(t), nil, "s", time.Minute, TestAccount{}).(*authService)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := svc.IssueToken(uuid.New(), "teacher")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.SetContextFromToken(context.Background(), tok)
	requireAPIErr(t, err, http.StatusUnauthorized, "")
}
