// Package common defines shared constants and sentinel errors used across
// the Conduit server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidCredentials is returned for any login failure. It is
	// deliberately the same whether the user is missing or the password is
	// wrong, so the response does not leak which one it was.
	ErrInvalidCredentials = errors.New("email or password is invalid")
)
