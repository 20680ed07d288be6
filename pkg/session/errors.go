package session

import "errors"

// Session errors.
var (
	// ErrNotConfigured is returned when session functionality is used
	// but WithSession was not configured on the app.
	ErrNotConfigured = errors.New("session: not configured")

	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session: not found")

	// ErrExpired is returned when a session has expired.
	ErrExpired = errors.New("session: expired")

	// ErrTypeMismatch is returned by Value when the stored value has another type.
	ErrTypeMismatch = errors.New("session: type mismatch")

	// ErrStoreStart is returned when a store fails its one-time initialization.
	ErrStoreStart = errors.New("session: store start failed")

	// ErrTokenGeneration is returned when no CSRF token could be produced.
	ErrTokenGeneration = errors.New("session: token generation failed")
)
