package internal

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// lifecycle drives one Run call: bind, start hooks, serve, drain, stop hooks.
type lifecycle struct {
	srv *http.Server
	cfg *runConfig
	log *slog.Logger
}

func newLifecycle(addr string, h http.Handler, cfg *runConfig) *lifecycle {
	if addr == "" {
		addr = ":8080"
	}
	return &lifecycle{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h,
			ReadTimeout:       defaultReadTimeout,
			WriteTimeout:      defaultWriteTimeout,
			IdleTimeout:       defaultIdleTimeout,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			MaxHeaderBytes:    defaultMaxHeaderBytes,
		},
		cfg: cfg,
		log: cfg.logger,
	}
}

// run blocks until the server fails, the base context ends or the process
// receives SIGINT/SIGTERM.
func (l *lifecycle) run() error {
	ctx, stop := signal.NotifyContext(l.cfg.baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", l.srv.Addr)
	if err != nil {
		return err
	}
	for _, hook := range l.cfg.startupHooks {
		if err := hook(ctx); err != nil {
			_ = ln.Close()
			return err
		}
	}

	served := make(chan error, 1)
	go func() {
		l.log.Info("dispatching requests", slog.String("address", ln.Addr().String()))
		err := l.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		served <- err
	}()

	select {
	case err := <-served:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	return l.drain()
}

// drain stops accepting requests, waits for in-flight dispatch cycles and
// then runs the stop hooks within the same deadline.
func (l *lifecycle) drain() error {
	l.log.Info("draining requests")
	ctx, cancel := context.WithTimeout(context.Background(), l.cfg.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := l.srv.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	for _, hook := range l.cfg.shutdownHooks {
		if err := hook(ctx); err != nil {
			l.log.Error("shutdown hook failed", slog.Any("error", err))
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		l.log.Error("stopped with errors", slog.Any("error", err))
		return err
	}
	l.log.Info("stopped")
	return nil
}
