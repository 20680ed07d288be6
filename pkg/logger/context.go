package logger

import (
	"context"
	"log/slog"
)

type (
	requestIDKey struct{}
	dispatchKey  struct{}
)

type dispatchTarget struct {
	controller string
	action     string
}

// WithRequestID stores the request id in ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request id stored in ctx, or "".
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

// WithDispatch stores the controller and action being executed.
func WithDispatch(ctx context.Context, controller, action string) context.Context {
	return context.WithValue(ctx, dispatchKey{}, dispatchTarget{controller: controller, action: action})
}

// Dispatch returns the controller and action stored in ctx.
func Dispatch(ctx context.Context) (controller, action string) {
	t, _ := ctx.Value(dispatchKey{}).(dispatchTarget)
	return t.controller, t.action
}

// RequestIDExtractor adds "request_id" when present.
func RequestIDExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := RequestID(ctx); id != "" {
			return slog.String("request_id", id), true
		}
		return slog.Attr{}, false
	}
}

// ControllerExtractor adds "controller" once dispatch resolved one.
func ControllerExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if c, _ := Dispatch(ctx); c != "" {
			return slog.String("controller", c), true
		}
		return slog.Attr{}, false
	}
}

// ActionExtractor adds "action" once dispatch resolved one.
func ActionExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if _, a := Dispatch(ctx); a != "" {
			return slog.String("action", a), true
		}
		return slog.Attr{}, false
	}
}

// DefaultExtractors returns the request id, controller and action extractors.
func DefaultExtractors() []ContextExtractor {
	return []ContextExtractor{RequestIDExtractor(), ControllerExtractor(), ActionExtractor()}
}
