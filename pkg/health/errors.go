package health

import "errors"

var (
	ErrCheckFailed  = errors.New("health: check failed")
	ErrCheckTimeout = errors.New("health: check timeout")
	ErrCheckPanic   = errors.New("health: check panicked")
)
