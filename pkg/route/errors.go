package route

import "errors"

var (
	// ErrInvalidPattern is returned when a pattern contains a dynamic segment
	// without a usable name.
	ErrInvalidPattern = errors.New("route: invalid pattern")

	// ErrDuplicateParam is returned when a pattern declares the same dynamic
	// segment name more than once.
	ErrDuplicateParam = errors.New("route: duplicate dynamic segment")

	// ErrMissingTarget is returned when a definition lacks a controller or action.
	ErrMissingTarget = errors.New("route: controller and action are required")

	// ErrInvalidDocument is returned when a YAML route document is not a mapping
	// of patterns to parameter sets.
	ErrInvalidDocument = errors.New("route: invalid route document")
)
