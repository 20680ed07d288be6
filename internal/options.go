package internal

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/forgemvc/pkg/db"
	"github.com/dmitrymomot/forgemvc/pkg/health"
	"github.com/dmitrymomot/forgemvc/pkg/logger"
	"github.com/dmitrymomot/forgemvc/pkg/metrics"
	"github.com/dmitrymomot/forgemvc/pkg/route"
	"github.com/dmitrymomot/forgemvc/pkg/session"
	"github.com/dmitrymomot/forgemvc/pkg/view"
)

// Option configures the application.
type Option func(*App)

// WithDebug toggles debug mode. In debug mode 404 pages carry the
// dispatch reason and error pages carry the error text.
func WithDebug(debug bool) Option {
	return func(a *App) {
		a.debug = debug
	}
}

// WithBasePath sets the path prefix the application is mounted under.
// It is stripped from request paths before route resolution.
func WithBasePath(path string) Option {
	return func(a *App) {
		a.basePath = strings.TrimRight(path, "/")
	}
}

// WithRoutes appends route definitions. Routes are matched in the order
// they were added across all calls.
//
// Example:
//
//	forgemvc.New(
//	    forgemvc.WithRoutes(
//	        forgemvc.Route{Pattern: "/", Params: forgemvc.Params{"controller": "home", "action": "index"}},
//	        forgemvc.Route{Pattern: "/posts/:id", Params: forgemvc.Params{"controller": "post", "action": "show"}},
//	    ),
//	)
func WithRoutes(defs ...route.Definition) Option {
	return func(a *App) {
		a.routes = append(a.routes, defs...)
	}
}

// WithRoutesFile loads route definitions from a YAML file in fsys.
func WithRoutesFile(fsys fs.FS, name string) Option {
	return func(a *App) {
		f, err := fsys.Open(name)
		if err != nil {
			a.errs = append(a.errs, fmt.Errorf("routes: %w", err))
			return
		}
		defer f.Close()

		defs, err := route.LoadYAML(f)
		if err != nil {
			a.errs = append(a.errs, fmt.Errorf("routes %s: %w", name, err))
			return
		}
		a.routes = append(a.routes, defs...)
	}
}

// WithController registers a controller factory under a name.
// Names are matched against the "controller" route parameter.
func WithController(name string, factory ControllerFactory) Option {
	return func(a *App) {
		if name == "" || factory == nil {
			a.errs = append(a.errs, fmt.Errorf("controller %q: empty name or nil factory", name))
			return
		}
		a.controllers[name] = factory
	}
}

// WithControllers registers several controller factories at once.
func WithControllers(factories map[string]ControllerFactory) Option {
	return func(a *App) {
		for name, factory := range factories {
			WithController(name, factory)(a)
		}
	}
}

// WithLoginAction names the action that replaces an unauthorized dispatch.
func WithLoginAction(controller, action string) Option {
	return func(a *App) {
		a.loginController = controller
		a.loginAction = action
	}
}

// WithViews enables template rendering from fsys.
//
// Example:
//
//	//go:embed views
//	var views embed.FS
//
//	forgemvc.New(
//	    forgemvc.WithViews(views),
//	)
func WithViews(fsys fs.FS, opts ...view.Option) Option {
	return func(a *App) {
		a.views = view.New(fsys, opts...)
	}
}

// WithSession enables server-side sessions backed by store.
// Sessions are loaded lazily and saved before the response is written.
//
// Example:
//
//	forgemvc.New(
//	    forgemvc.WithSession(session.NewMemoryStore(),
//	        forgemvc.WithSessionCookieName("__sid"),
//	        forgemvc.WithSessionSecure(true),
//	    ),
//	)
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessionManager = NewSessionManager(store, opts...)
	}
}

// WithDatabase exposes a connection manager to controllers. Its connections
// join the readiness checks and metrics, and are closed on shutdown.
func WithDatabase(m *db.Manager) Option {
	return func(a *App) {
		a.db = m
	}
}

// WithConfigure registers a hook that runs once all options are applied,
// before routes are compiled.
func WithConfigure(fn func(*App) error) Option {
	return func(a *App) {
		if fn != nil {
			a.configure = append(a.configure, fn)
		}
	}
}

// WithLogger creates a logger tagged with a component name.
//
// Example:
//
//	forgemvc.New(
//	    forgemvc.WithLogger("blog", logger.WithFormat(logger.FormatJSON)),
//	)
func WithLogger(component string, opts ...logger.Option) Option {
	return func(a *App) {
		a.logger = logger.New(opts...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithErrorHandler replaces the handler for fatal dispatch errors.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		if h != nil {
			a.errorHandler = h
		}
	}
}

// WithMiddleware adds global middleware. Middleware is applied in the
// order provided and wraps auxiliary endpoints as well as dispatch.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHealthChecks enables liveness and readiness endpoints.
//
// Example:
//
//	forgemvc.WithHealthChecks(
//	    forgemvc.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
			checks:        make(health.Checks),
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithMetrics exposes Prometheus metrics at path. A nil registerer uses a
// private registry.
func WithMetrics(path string, reg prometheus.Registerer) Option {
	return func(a *App) {
		if path == "" {
			path = defaultMetricsPath
		}
		a.metricsPath = path
		a.metrics = metrics.New(reg, metrics.DefaultNamespace)
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	forgemvc.New(
//	    forgemvc.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			a.errs = append(a.errs, fmt.Errorf("static files: %w", err))
			return
		}

		prefix := strings.TrimSuffix(pattern, "/")
		fileServer := http.StripPrefix(prefix, http.FileServerFS(subFS))

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler: handler, pattern: pattern})
	}
}
