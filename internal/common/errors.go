// Package common defines shared constants and sentinel errors used across
// client and server layers of Oasis. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrRejected marks a client-facing refusal (bad index, bad hash,
	// foreign task). It is never a server fault.
	ErrRejected = errors.New("request rejected")

	// ErrIO marks filesystem faults in the upload pipeline: missing scratch
	// directories, failed writes or reads.
	ErrIO = errors.New("storage io error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
