package storage

import "errors"

// Common client storage errors
var (
	// ErrTokenNotFound indicates that the requested token is not stored
	ErrTokenNotFound = errors.New("token not found")

	// ErrPendingEmailNotFound indicates that no login is waiting for OTP verification
	ErrPendingEmailNotFound = errors.New("pending login email not found")

	// ErrFlagNotFound indicates that a persisted flag has never been written
	ErrFlagNotFound = errors.New("flag not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
