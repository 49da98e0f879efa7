// Package common defines shared constants and sentinel errors used across
// the layers of ProjectDock. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level outcome kinds. The API layer maps these to transport
	// status codes 1:1.
	ErrValidation       = errors.New("validation error")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInternal         = errors.New("internal error")

	// ErrUpstreamStore marks an object-store failure. It is never folded
	// into a success result.
	ErrUpstreamStore = errors.New("object store error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
