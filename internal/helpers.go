package internal

import (
	"fmt"
	"strconv"

	"github.com/dmitrymomot/forgemvc/pkg/route"
)

// ContextValue returns the request-scoped value stored under key as T.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// Param converts a resolved route parameter. Unparsable values yield the zero value.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](params route.Params, name string) T {
	v, _ := convertParam[T](params[name])
	return v
}

// Query converts a query parameter. Unparsable values yield the zero value.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	v, _ := convertParam[T](c.Request().Get(name, ""))
	return v
}

// QueryDefault is Query with a fallback for empty or unparsable values.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	raw := c.Request().Get(name, "")
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// RepositoryAs returns the named repository asserted to T.
func RepositoryAs[T any](c Context, name string) (T, error) {
	var zero T
	repo, err := c.Repository(name)
	if err != nil {
		return zero, err
	}
	typed, ok := repo.(T)
	if !ok {
		return zero, fmt.Errorf("repository %q is %T", name, repo)
	}
	return typed, nil
}

// convertParam converts a raw string to the target type T.
// Returns the converted value and true on success, or the zero value and false on failure.
func convertParam[T ~string | ~int | ~int64 | ~float64 | ~bool](raw string) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		return any(raw).(T), true
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	}
	return zero, false
}
