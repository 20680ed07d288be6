package internal

import (
	"errors"
	"net/http"
)

// Dispatch errors. Any of these reaching the shell boundary is fatal.
var (
	ErrLoginActionUnavailable = errors.New("forgemvc: login action unavailable")
	ErrAlreadySent            = errors.New("forgemvc: response already sent")
	ErrViewsNotConfigured     = errors.New("forgemvc: views not configured")
	ErrDatabaseNotConfigured  = errors.New("forgemvc: database not configured")
)

// HTTPError carries a status code and message through the dispatch cycle.
// NotFound and Unauthorized errors returned by actions become dispatch
// outcomes; any other HTTPError is fatal and rendered by the error handler
// with its own status code.
type HTTPError struct {
	// Err is the underlying error, logged but never shown.
	Err error

	// Message is the user-facing message.
	Message string

	Title     string
	Detail    string
	RequestID string

	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates an HTTPError with the given status code and message.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{Code: code, Message: message}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Title = title
	}
}

func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Detail = detail
	}
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

// AsHTTPError extracts the HTTPError from err, or returns nil.
func AsHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return nil
}

// IsNotFound reports whether err carries a 404 HTTPError.
func IsNotFound(err error) bool {
	he := AsHTTPError(err)
	return he != nil && he.Code == http.StatusNotFound
}

// IsUnauthorized reports whether err carries a 401 HTTPError.
func IsUnauthorized(err error) bool {
	he := AsHTTPError(err)
	return he != nil && he.Code == http.StatusUnauthorized
}
