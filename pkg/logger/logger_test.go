package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forgemvc/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	return m
}

func TestNew_DefaultExtractors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithWriter(&buf),
		logger.WithExtractors(logger.DefaultExtractors()...),
	)

	ctx := logger.WithRequestID(context.Background(), "req-1")
	ctx = logger.WithDispatch(ctx, "post", "show")
	log.InfoContext(ctx, "rendered", slog.Int("status", 200))

	m := decode(t, &buf)
	require.Equal(t, "rendered", m["msg"])
	require.Equal(t, "req-1", m["request_id"])
	require.Equal(t, "post", m["controller"])
	require.Equal(t, "show", m["action"])
	require.EqualValues(t, 200, m["status"])
}

func TestNew_ExtractorsSkipMissingValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithWriter(&buf),
		logger.WithExtractors(logger.DefaultExtractors()...),
	)
	log.InfoContext(context.Background(), "plain")

	m := decode(t, &buf)
	require.NotContains(t, m, "request_id")
	require.NotContains(t, m, "controller")
}

func TestNew_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithWriter(&buf), logger.WithLevel(slog.LevelWarn))
	log.Info("hidden")
	require.Zero(t, buf.Len())
	log.Warn("shown")
	require.Contains(t, buf.String(), "shown")
}

func TestNew_TextFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatText))
	log.Info("hello", "k", "v")
	require.True(t, strings.Contains(buf.String(), "msg=hello"))
	require.True(t, strings.Contains(buf.String(), "k=v"))
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.False(t, log.Enabled(context.Background(), slog.LevelError))
}

func TestContextAttrs_SurviveWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithWriter(&buf),
		logger.WithExtractors(logger.RequestIDExtractor(), nil),
	).With("component", "dispatch")

	log.InfoContext(logger.WithRequestID(context.Background(), "r-9"), "x")
	m := decode(t, &buf)
	require.Equal(t, "dispatch", m["component"])
	require.Equal(t, "r-9", m["request_id"])
}

func TestDispatch_RoundTrip(t *testing.T) {
	t.Parallel()

	c, a := logger.Dispatch(context.Background())
	require.Empty(t, c)
	require.Empty(t, a)

	c, a = logger.Dispatch(logger.WithDispatch(context.Background(), "account", "login"))
	require.Equal(t, "account", c)
	require.Equal(t, "login", a)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, logger.ParseLevel("debug"))
	require.Equal(t, slog.LevelError, logger.ParseLevel("ERROR"))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel("nonsense"))
}

func TestNewWithSentry_EmptyDSNFallsBack(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewWithSentry(logger.SentryConfig{}, logger.WithWriter(&buf))
	log.Error("boom", "error", errors.New("x"))
	require.Contains(t, buf.String(), "boom")
}
