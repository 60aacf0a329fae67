package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/authcore/authcore/internal/common"
	"github.com/authcore/authcore/internal/logging"
	"github.com/authcore/authcore/internal/passwd"
	"github.com/authcore/authcore/internal/server/auth"
	"github.com/authcore/authcore/internal/server/config"
	"github.com/authcore/authcore/internal/server/models"
	"github.com/authcore/authcore/internal/server/repositories/accounts"
	"github.com/authcore/authcore/internal/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- helpers ---

var testHashParams = &passwd.Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func quietLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newAuthService(t *testing.T, store accounts.Repository) *AuthService {
	t.Helper()
	hasher, err := passwd.NewHasher(testHashParams)
	require.NoError(t, err)
	cfg := &config.Config{
		SecretKey:                   "k",
		AccessTokenValidityDuration: 15 * time.Minute,
	}
	return NewAuthService(store, hasher, quietLogger(), cfg)
}

func registerReq() RegisterRequest {
	return RegisterRequest{
		Username:        "alice",
		Email:           "a@x.com",
		FirstName:       "A",
		LastName:        "L",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
	}
}

// countingRepo wraps a Repository and records Create calls.
type countingRepo struct {
	accounts.Repository
	creates int
}

func (r *countingRepo) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	r.creates++
	return r.Repository.Create(ctx, a)
}

// failingRepo simulates persistence-layer outage.
type failingRepo struct{}

func (failingRepo) Create(context.Context, *models.Account) (*models.Account, error) {
	return nil, errors.New("connection refused")
}
func (failingRepo) FindByUsername(context.Context, string) (*models.Account, error) {
	return nil, errors.New("connection refused")
}
func (failingRepo) FindByID(context.Context, string) (*models.Account, error) {
	return nil, errors.New("connection refused")
}

// --- register ---

func TestRegister_Success(t *testing.T) {
	store := accounts.NewInMemoryRepository()
	s := newAuthService(t, store)

	account, err := s.Register(context.Background(), registerReq())
	require.NoError(t, err)

	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "alice", account.Username)
	assert.NotEqual(t, "Passw0rd!", account.PasswordHash, "plaintext must never be persisted")
	assert.NotContains(t, account.PasswordHash, "Passw0rd!")

	stored, err := store.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, account.ID, stored.ID)
}

func TestRegister_PasswordTooShort_NothingPersisted(t *testing.T) {
	repo := &countingRepo{Repository: accounts.NewInMemoryRepository()}
	s := newAuthService(t, repo)

	req := registerReq()
	req.Password = "short1!"
	req.ConfirmPassword = "short1!"

	_, err := s.Register(context.Background(), req)
	require.ErrorIs(t, err, validate.ErrPasswordTooShort)
	assert.Equal(t, "Password must be at least 8 characters", err.Error())
	assert.Zero(t, repo.creates, "no account must be persisted")
}

func TestRegister_PasswordMismatch_NothingPersisted(t *testing.T) {
	repo := &countingRepo{Repository: accounts.NewInMemoryRepository()}
	s := newAuthService(t, repo)

	req := registerReq()
	req.ConfirmPassword = "Different1!"

	_, err := s.Register(context.Background(), req)
	require.ErrorIs(t, err, validate.ErrPasswordMismatch)
	assert.Equal(t, "Passwords do not match", err.Error())
	assert.Zero(t, repo.creates)
}

func TestRegister_DuplicateUsername_Conflict(t *testing.T) {
	store := accounts.NewInMemoryRepository()
	s := newAuthService(t, store)
	ctx := context.Background()

	_, err := s.Register(ctx, registerReq())
	require.NoError(t, err)

	// same username, different email
	req := registerReq()
	req.Email = "second@x.com"
	_, err = s.Register(ctx, req)
	require.ErrorIs(t, err, common.ErrorConflict)

	// still exactly one account for "alice"
	got, err := store.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestRegister_StoreDown_Unavailable(t *testing.T) {
	s := newAuthService(t, failingRepo{})

	_, err := s.Register(context.Background(), registerReq())
	require.ErrorIs(t, err, common.ErrorUnavailable)
}

// --- login ---

func TestLogin_RoundTrip(t *testing.T) {
	store := accounts.NewInMemoryRepository()
	s := newAuthService(t, store)
	ctx := context.Background()

	account, err := s.Register(ctx, registerReq())
	require.NoError(t, err)

	result, err := s.Login(ctx, "alice", "Passw0rd!")
	require.NoError(t, err)

	require.NotEmpty(t, result.AccessToken)
	assert.True(t, result.ExpiresAt.After(result.IssuedAt), "expires_at must be after issued_at")

	// the token is bound to the registered account's identity
	subject, err := auth.VerifyToken(result.AccessToken, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, account.ID, subject)
}

func TestLogin_WrongPassword(t *testing.T) {
	s := newAuthService(t, accounts.NewInMemoryRepository())
	ctx := context.Background()

	_, err := s.Register(ctx, registerReq())
	require.NoError(t, err)

	result, err := s.Login(ctx, "alice", "WrongPass1!")
	require.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.Nil(t, result, "no token on failed login")
}

// A wrong password and a nonexistent user must be indistinguishable.
func TestLogin_UnknownUserSameError(t *testing.T) {
	s := newAuthService(t, accounts.NewInMemoryRepository())
	ctx := context.Background()

	_, err := s.Register(ctx, registerReq())
	require.NoError(t, err)

	_, errWrongPass := s.Login(ctx, "alice", "WrongPass1!")
	_, errNoUser := s.Login(ctx, "nobody", "AnyPass1!")

	require.ErrorIs(t, errWrongPass, common.ErrInvalidCredentials)
	require.ErrorIs(t, errNoUser, common.ErrInvalidCredentials)
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

func TestLogin_StoreDown_Unavailable(t *testing.T) {
	s := newAuthService(t, failingRepo{})

	_, err := s.Login(context.Background(), "alice", "Passw0rd!")
	require.ErrorIs(t, err, common.ErrorUnavailable)
}

// --- authenticate ---

func TestAuthenticate_RoundTrip(t *testing.T) {
	s := newAuthService(t, accounts.NewInMemoryRepository())
	ctx := context.Background()

	account, err := s.Register(ctx, registerReq())
	require.NoError(t, err)

	result, err := s.Login(ctx, "alice", "Passw0rd!")
	require.NoError(t, err)

	got, err := s.Authenticate(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
}

func TestAuthenticate_BadToken(t *testing.T) {
	s := newAuthService(t, accounts.NewInMemoryRepository())

	_, err := s.Authenticate(context.Background(), "not.a.jwt")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	store := accounts.NewInMemoryRepository()
	hasher, err := passwd.NewHasher(testHashParams)
	require.NoError(t, err)

	// TTL already elapsed at verification time
	cfg := &config.Config{SecretKey: "k", AccessTokenValidityDuration: -1 * time.Second}
	s := NewAuthService(store, hasher, quietLogger(), cfg)
	ctx := context.Background()

	_, err = s.Register(ctx, registerReq())
	require.NoError(t, err)

	result, err := s.Login(ctx, "alice", "Passw0rd!")
	require.NoError(t, err)

	_, err = s.Authenticate(ctx, result.AccessToken)
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}
