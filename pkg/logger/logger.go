package logger

import (
	"io"
	"log/slog"
	"os"
)

// Format selects the output encoding of a logger.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type config struct {
	writer     io.Writer
	level      slog.Leveler
	format     Format
	extractors []ContextExtractor
}

// Option configures a logger built by New or NewWithSentry.
type Option func(*config)

// WithWriter sets the destination. Defaults to os.Stdout.
func WithWriter(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.writer = w
		}
	}
}

// WithLevel sets the minimum level. Defaults to slog.LevelInfo.
func WithLevel(level slog.Leveler) Option {
	return func(c *config) {
		if level != nil {
			c.level = level
		}
	}
}

// WithFormat selects JSON or text output. Unknown values fall back to JSON.
func WithFormat(f Format) Option {
	return func(c *config) {
		c.format = f
	}
}

// WithExtractors appends context extractors applied on every log call.
func WithExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		c.extractors = append(c.extractors, extractors...)
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		writer: os.Stdout,
		level:  slog.LevelInfo,
		format: FormatJSON,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *config) handler() slog.Handler {
	ho := &slog.HandlerOptions{Level: c.level}
	if c.format == FormatText {
		return slog.NewTextHandler(c.writer, ho)
	}
	return slog.NewJSONHandler(c.writer, ho)
}

// New creates a structured logger.
func New(opts ...Option) *slog.Logger {
	c := newConfig(opts)
	return slog.New(withContextAttrs(c.handler(), c.extractors))
}

// NewNope creates a logger that discards all output.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel converts a textual level (debug, info, warn, error) into a slog.Level.
// Unknown values yield slog.LevelInfo.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
