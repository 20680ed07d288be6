package internal

import (
	"context"
	"log/slog"
	"time"
)

// RunOption configures App.Run.
type RunOption func(*runConfig)

type runConfig struct {
	logger          *slog.Logger
	shutdownTimeout time.Duration
	startupHooks    []func(context.Context) error
	shutdownHooks   []func(context.Context) error
	baseCtx         context.Context
}

func newRunConfig(fallback *slog.Logger, opts ...RunOption) *runConfig {
	cfg := &runConfig{
		logger:          fallback,
		shutdownTimeout: defaultShutdownTimeout,
		baseCtx:         context.Background(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Logger replaces the application logger for start and stop messages.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds draining in-flight requests plus the shutdown
// hooks. Defaults to 30s.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// ShutdownHook runs fn after requests have drained, in registration order.
// The session store and database are closed after user hooks.
//
//	app.Run(":8080", forgemvc.ShutdownHook(redis.Shutdown(client)))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// StartupHook registers a function to run after the listener is bound and
// before the server accepts requests. A failing hook aborts the start.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// WithContext sets the parent of the signal context; cancelling it stops
// the server like SIGTERM does.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}
