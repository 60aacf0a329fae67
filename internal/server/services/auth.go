// Package services contains server-side business logic. This file implements
// AuthService, which orchestrates registration (validate → hash → persist)
// and login (lookup → verify → issue token).
package services

import (
	"context"
	"errors"
	"time"

	"github.com/authcore/authcore/internal/common"
	"github.com/authcore/authcore/internal/logging"
	"github.com/authcore/authcore/internal/passwd"
	"github.com/authcore/authcore/internal/server/auth"
	"github.com/authcore/authcore/internal/server/config"
	"github.com/authcore/authcore/internal/server/models"
	"github.com/authcore/authcore/internal/server/repositories/accounts"
	"github.com/authcore/authcore/internal/validate"
)

// RegisterRequest carries the six fields submitted by the registration form.
type RegisterRequest struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	ConfirmPassword string
}

// TokenResult is the outcome of a successful login. The caller is responsible
// for storing the token client-side; nothing is kept server-side.
type TokenResult struct {
	AccessToken string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// AuthService provides the authentication use cases:
//   - Register: validate input and create an account
//   - Login: verify credentials and mint an access token
//   - Authenticate: resolve a presented token back to its account
//
// Each call is independent; the account store is the only shared state.
type AuthService struct {
	store          accounts.Repository
	hasher         *passwd.Hasher
	logger         logging.Logger
	jwtSecret      []byte
	accessTokenTTL time.Duration
}

// NewAuthService constructs an AuthService from an account store, a password
// hasher, and server config.
func NewAuthService(store accounts.Repository, hasher *passwd.Hasher, l logging.Logger, cfg *config.Config) *AuthService {
	return &AuthService{
		store:          store,
		hasher:         hasher,
		logger:         l.With("module", "auth_service"),
		jwtSecret:      []byte(cfg.SecretKey),
		accessTokenTTL: cfg.AccessTokenValidityDuration,
	}
}

// Register validates the request, hashes the password, and persists the
// account. Validation errors are returned as-is so their messages reach the
// user; store conflicts collapse to common.ErrorConflict; any other store
// failure surfaces as common.ErrorUnavailable.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.Account, error) {

	if err := validate.Registration(validate.RegistrationInput{
		Username:        req.Username,
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	account, err := s.store.Create(ctx, &models.Account{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) || errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrorConflict
		}
		s.logger.Error(ctx, "account create failed", "error", err)
		return nil, common.ErrorUnavailable
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID, "username", account.Username)

	return account, nil
}

// Login verifies the supplied credentials and mints an access token. A miss
// and a wrong password both return common.ErrInvalidCredentials; on a miss
// the hasher still runs against a dummy hash so the response does not reveal
// whether the account exists.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResult, error) {

	account, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "account lookup failed", "error", err)
		return nil, common.ErrorUnavailable
	}

	ok, err := s.hasher.Verify(password, account.PasswordHash)
	if err != nil {
		s.logger.Error(ctx, "stored hash unreadable", "account_id", account.ID, "error", err)
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}

	issuedAt := time.Now()
	token, expiresAt, err := auth.IssueToken(account.ID, s.jwtSecret, s.accessTokenTTL)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "account_id", account.ID, "error", err)
		return nil, common.ErrorInternal
	}

	return &TokenResult{AccessToken: token, IssuedAt: issuedAt, ExpiresAt: expiresAt}, nil
}

// Authenticate resolves an access token to the account it was issued for.
// Any token failure, and a token whose account no longer resolves, yields
// common.ErrorUnauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Account, error) {

	accountID, err := auth.VerifyToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	account, err := s.store.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "account lookup failed", "error", err)
		return nil, common.ErrorUnavailable
	}

	return account, nil
}
