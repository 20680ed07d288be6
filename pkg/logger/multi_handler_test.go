package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestFanout(t *testing.T) {
	t.Parallel()

	var info, warn bytes.Buffer
	h := fanout{
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}
	log := slog.New(h).With("app", "blog")

	log.Info("only info")
	require.Contains(t, info.String(), "only info")
	require.Zero(t, warn.Len())

	log.Warn("both")
	require.Contains(t, warn.String(), `"app":"blog"`)
}

func TestFanout_JoinsErrorsAndContinues(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	h := fanout{
		failingHandler{slog.NewJSONHandler(&bytes.Buffer{}, nil)},
		slog.NewJSONHandler(&out, nil),
	}
	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "m", 0))
	require.Error(t, err)
	require.Contains(t, out.String(), `"msg":"m"`)
}
