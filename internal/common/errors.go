// Package common defines shared constants and sentinel errors used across
// the service layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongTokenType = errors.New("wrong token type")

	// Verification code errors.
	ErrInvalidCode = errors.New("invalid or expired verification code")
	ErrCodeExpired = errors.New("verification code expired")

	// Provisioning errors. ErrProvisioningFailed means the duplicate-insert
	// recovery re-fetch found nothing, which indicates an inconsistent store.
	ErrProvisioningFailed = errors.New("user provisioning failed")
)
