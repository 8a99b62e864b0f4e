package storage

import "errors"

// Common storage errors
var (
	// ErrInvalidToken indicates that an empty or malformed token was passed
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidEvent indicates that an audit event lacks required fields
	ErrInvalidEvent = errors.New("invalid auth event")
)
