// Package common defines shared sentinel errors used across the layers of
// the authentication core. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound        = errors.New("not found")
	ErrDuplicateUsername = errors.New("username already registered")
	ErrDuplicateEmail    = errors.New("email already registered")

	// Service-level errors.
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrorConflict         = errors.New("username or email already registered")
	ErrorUnavailable      = errors.New("service unavailable")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Token lifecycle errors.
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
	ErrBadSignature   = errors.New("token signature invalid")
)
