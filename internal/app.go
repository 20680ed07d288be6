package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/forgemvc/middlewares"
	"github.com/dmitrymomot/forgemvc/pkg/db"
	"github.com/dmitrymomot/forgemvc/pkg/health"
	"github.com/dmitrymomot/forgemvc/pkg/logger"
	"github.com/dmitrymomot/forgemvc/pkg/metrics"
	"github.com/dmitrymomot/forgemvc/pkg/route"
	"github.com/dmitrymomot/forgemvc/pkg/view"
)

const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

// App turns requests into controller action invocations.
// It is immutable after New returns and safe for concurrent use.
type App struct {
	router          chi.Router
	dispatcher      *dispatcher
	errorHandler    ErrorHandler
	healthConfig    *healthConfig
	logger          *slog.Logger
	sessionManager  *SessionManager
	views           *view.Renderer
	db              *db.Manager
	metrics         *metrics.Metrics
	controllers     map[string]ControllerFactory
	metricsPath     string
	loginController string
	loginAction     string
	basePath        string
	routes          []route.Definition
	configure       []func(*App) error
	middlewares     []func(http.Handler) http.Handler
	staticRoutes    []staticRoute
	errs            []error
	debug           bool
}

type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates an application. It panics when the configuration is invalid;
// use NewE to get the error instead.
func New(opts ...Option) *App {
	a, err := NewE(opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// NewE creates an application, compiling its routes and running the
// configure hooks.
func NewE(opts ...Option) (*App, error) {
	a := &App{
		router:       chi.NewRouter(),
		logger:       logger.NewNope(),
		errorHandler: defaultErrorHandler,
		controllers:  make(map[string]ControllerFactory),
	}
	for _, opt := range opts {
		opt(a)
	}

	for _, fn := range a.configure {
		if err := fn(a); err != nil {
			a.errs = append(a.errs, fmt.Errorf("configure: %w", err))
		}
	}

	table, err := route.Compile(a.routes)
	if err != nil {
		a.errs = append(a.errs, err)
	}
	if err := errors.Join(a.errs...); err != nil {
		return nil, err
	}

	a.dispatcher = &dispatcher{table: table, controllers: a.controllers}
	if a.sessionManager != nil {
		a.sessionManager.SetLogger(a.logger)
	}
	if err := a.setupRoutes(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) setupRoutes() error {
	for _, mw := range a.middlewares {
		a.router.Use(mw)
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.healthConfig != nil {
		checks := make(health.Checks, len(a.healthConfig.checks))
		for name, fn := range a.healthConfig.checks {
			checks[name] = fn
		}
		if a.db != nil {
			for _, conn := range a.db.Connections() {
				checks["db:"+conn.Name] = conn.Healthcheck()
			}
		}
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(checks, health.WithLogger(a.logger)))
	}

	if a.metrics != nil {
		if a.db != nil {
			for _, conn := range a.db.Connections() {
				if err := a.metrics.RegisterDB(conn.Name, conn.DB); err != nil {
					return fmt.Errorf("metrics: %w", err)
				}
			}
		}
		a.router.Method(http.MethodGet, a.metricsPath, a.metrics.Handler())
	}

	h := a.dispatchHandler()
	a.router.Handle("/", h)
	a.router.Handle("/*", h)
	a.router.NotFound(h.ServeHTTP)
	a.router.MethodNotAllowed(h.ServeHTTP)
	return nil
}

// dispatchHandler wraps the response writer before panic recovery so the
// recover path can tell whether anything was sent.
func (a *App) dispatchHandler() http.Handler {
	inner := middlewares.Recover(
		middlewares.WithRecoverLogger(a.logger),
		middlewares.WithRecoverResponder(a.recoverResponder),
	)(http.HandlerFunc(a.serveDispatch))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner.ServeHTTP(NewResponseWriter(w), r)
	})
}

// ServeHTTP runs the router: auxiliary endpoints first, dispatch otherwise.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Router returns the underlying chi router.
func (a *App) Router() chi.Router { return a.router }

// Routes returns the compiled route table.
func (a *App) Routes() *route.Table { return a.dispatcher.table }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// DB returns the connection manager, or nil.
func (a *App) DB() *db.Manager { return a.db }

// IsDebug reports whether debug mode is on.
func (a *App) IsDebug() bool { return a.debug }

// SessionManager returns the session manager, or nil.
func (a *App) SessionManager() *SessionManager { return a.sessionManager }

// Run serves the app on addr and blocks until shutdown. Database
// connections and a closable session store are released on shutdown.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := newRunConfig(a.logger, opts...)
	if a.sessionManager != nil {
		if c, ok := a.sessionManager.Store().(io.Closer); ok {
			cfg.shutdownHooks = append(cfg.shutdownHooks, func(context.Context) error { return c.Close() })
		}
	}
	if a.db != nil {
		cfg.shutdownHooks = append(cfg.shutdownHooks, db.Shutdown(a.db))
	}
	return newLifecycle(addr, a, cfg).run()
}

type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
	defaultMetricsPath   = "/metrics"
)

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check. Database connections
// registered on the app are checked automatically.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		c.checks[name] = fn
	}
}
