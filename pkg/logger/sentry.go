package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration settings.
type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
	// MinLevel is the lowest level stored in Sentry as a log. Errors always create issues.
	MinLevel slog.Level
}

// NewWithSentry creates a logger writing to the configured writer and to Sentry.
// An empty DSN or a failed SDK init yields the plain logger.
func NewWithSentry(cfg SentryConfig, opts ...Option) *slog.Logger {
	c := newConfig(opts)
	base := c.handler()

	if cfg.DSN == "" {
		return slog.New(withContextAttrs(base, c.extractors))
	}

	env := cfg.Environment
	if env == "" {
		env = "production"
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: env,
		Release:     cfg.Release,
		EnableLogs:  true,
	}); err != nil {
		slog.New(base).Error("failed to initialize sentry", slog.String("error", err.Error()))
		return slog.New(withContextAttrs(base, c.extractors))
	}

	sh := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   sentryLogLevels(cfg.MinLevel),
	}.NewSentryHandler(context.Background())

	return slog.New(withContextAttrs(fanout{base, sh}, c.extractors))
}

func sentryLogLevels(min slog.Level) []slog.Level {
	all := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	out := make([]slog.Level, 0, len(all))
	for _, l := range all {
		if l >= min {
			out = append(out, l)
		}
	}
	return out
}

// FlushSentry waits up to timeout for buffered Sentry events. Safe to call when
// Sentry was never initialized.
func FlushSentry(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
