package redis

import "errors"

// Errors returned by Open and Healthcheck. Underlying client errors are
// joined to them.
var (
	ErrEmptyConnectionURL = errors.New("redis: connection url is required")
	ErrFailedToParseURL   = errors.New("redis: invalid connection url")
	ErrConnectionFailed   = errors.New("redis: server unreachable")
	ErrHealthcheckFailed  = errors.New("redis: ping failed")
	ErrNilClient          = errors.New("redis: nil client")
)
