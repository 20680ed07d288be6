package forgemvc

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/forgemvc/internal"
	"github.com/dmitrymomot/forgemvc/pkg/db"
	"github.com/dmitrymomot/forgemvc/pkg/health"
	"github.com/dmitrymomot/forgemvc/pkg/logger"
	"github.com/dmitrymomot/forgemvc/pkg/route"
	"github.com/dmitrymomot/forgemvc/pkg/session"
	"github.com/dmitrymomot/forgemvc/pkg/view"
)

// Type aliases - public API
type (
	// App turns requests into controller action invocations.
	App = internal.App

	// Context is the per-request dispatch context handed to controllers.
	Context = internal.Context

	// Controller exposes named actions.
	Controller = internal.Controller

	// ControllerFactory builds a controller for one request.
	ControllerFactory = internal.ControllerFactory

	// ActionFunc is the signature of a controller action.
	ActionFunc = internal.ActionFunc

	// Actions is a map-backed Controller.
	Actions = internal.Actions

	// AuthPolicy declares which actions need an authenticated session.
	AuthPolicy = internal.AuthPolicy

	// AuthRequirer is implemented by controllers that need authentication.
	AuthRequirer = internal.AuthRequirer

	// Gate is the request-scoped session facade.
	Gate = internal.Gate

	// Request wraps the incoming HTTP request.
	Request = internal.Request

	// Response buffers the outgoing response until it is sent.
	Response = internal.Response

	// Outcome is the result of one dispatch.
	Outcome = internal.Outcome

	// ErrorHandler renders fatal dispatch errors.
	ErrorHandler = internal.ErrorHandler

	// HTTPError is an error carrying an HTTP status code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// Extractor reads a value from the first source that has one.
	Extractor = internal.Extractor

	// ExtractorSource reads one value from the request.
	ExtractorSource = internal.ExtractorSource

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// SessionManager owns the session store and cookie.
	SessionManager = internal.SessionManager

	// ResponseWriter wraps http.ResponseWriter with before-write hooks.
	ResponseWriter = internal.ResponseWriter

	// Route binds a path pattern to controller and action parameters.
	Route = route.Definition

	// Params holds the parameters of a resolved route.
	Params = route.Params

	// Session is the server-side session record.
	Session = session.Session

	// SessionStore persists sessions.
	SessionStore = session.Store

	// ViewOption configures the view renderer.
	ViewOption = view.Option

	// LoggerOption configures the application logger.
	LoggerOption = logger.Option
)

// Outcome kinds.
const (
	OutcomeOK           = internal.OutcomeOK
	OutcomeNotFound     = internal.OutcomeNotFound
	OutcomeUnauthorized = internal.OutcomeUnauthorized
)

// CSRF token locations checked by Context.CheckCSRFToken.
const (
	CSRFFormField = internal.CSRFFormField
	CSRFHeader    = internal.CSRFHeader
)

// DefaultLayout is the layout Context.Render wraps templates in.
const DefaultLayout = internal.DefaultLayout

// Errors
var (
	ErrLoginActionUnavailable = internal.ErrLoginActionUnavailable
	ErrAlreadySent            = internal.ErrAlreadySent
	ErrViewsNotConfigured     = internal.ErrViewsNotConfigured
	ErrDatabaseNotConfigured  = internal.ErrDatabaseNotConfigured
)

// Constructors

// New creates an application. It panics when the configuration is invalid.
//
// Example:
//
//	app := forgemvc.New(
//	    forgemvc.WithRoutesFile(config, "routes.yaml"),
//	    forgemvc.WithController("post", controllers.NewPost),
//	    forgemvc.WithSession(session.NewMemoryStore()),
//	    forgemvc.WithLoginAction("account", "login"),
//	)
//
//	err := app.Run(":8080")
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// NewE is like New but returns configuration errors.
func NewE(opts ...Option) (*App, error) {
	return internal.NewE(opts...)
}

// Protect wraps a controller with an authentication policy.
func Protect(c Controller, policy AuthPolicy) Controller {
	return internal.Protect(c, policy)
}

// RequireAll requires authentication for every action.
func RequireAll() AuthPolicy { return internal.RequireAll() }

// RequireActions requires authentication for the named actions only.
func RequireActions(names ...string) AuthPolicy { return internal.RequireActions(names...) }

// NewGate returns the session gate of the request carried by ctx.
func NewGate(ctx context.Context) *Gate { return internal.NewGate(ctx) }

// NewResponseWriter wraps w with before-write hooks.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return internal.NewResponseWriter(w)
}

// NewSessionManager creates a session manager backed by store.
func NewSessionManager(store SessionStore, opts ...SessionOption) *SessionManager {
	return internal.NewSessionManager(store, opts...)
}

// App options

// WithDebug toggles debug mode.
func WithDebug(debug bool) Option { return internal.WithDebug(debug) }

// WithBasePath sets the path prefix the application is mounted under.
func WithBasePath(path string) Option { return internal.WithBasePath(path) }

// WithRoutes appends route definitions.
func WithRoutes(defs ...Route) Option { return internal.WithRoutes(defs...) }

// WithRoutesFile loads route definitions from a YAML file.
func WithRoutesFile(fsys fs.FS, name string) Option {
	return internal.WithRoutesFile(fsys, name)
}

// WithController registers a controller factory.
func WithController(name string, factory ControllerFactory) Option {
	return internal.WithController(name, factory)
}

// WithControllers registers several controller factories.
func WithControllers(factories map[string]ControllerFactory) Option {
	return internal.WithControllers(factories)
}

// WithLoginAction names the action run in place of an unauthorized one.
func WithLoginAction(controller, action string) Option {
	return internal.WithLoginAction(controller, action)
}

// WithViews enables template rendering.
func WithViews(fsys fs.FS, opts ...ViewOption) Option {
	return internal.WithViews(fsys, opts...)
}

// WithSession enables server-side sessions.
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithDatabase exposes a connection manager to controllers.
func WithDatabase(m *db.Manager) Option { return internal.WithDatabase(m) }

// WithConfigure registers a hook run before routes are compiled.
func WithConfigure(fn func(*App) error) Option { return internal.WithConfigure(fn) }

// WithLogger creates a logger tagged with a component name.
func WithLogger(component string, opts ...LoggerOption) Option {
	return internal.WithLogger(component, opts...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option { return internal.WithCustomLogger(l) }

// WithErrorHandler replaces the fatal error handler.
func WithErrorHandler(h ErrorHandler) Option { return internal.WithErrorHandler(h) }

// WithMiddleware adds global net/http middleware.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithMiddleware(mw...)
}

// WithHealthChecks enables liveness and readiness endpoints.
//
// Example:
//
//	forgemvc.WithHealthChecks(
//	    forgemvc.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithMetrics exposes Prometheus metrics at path.
func WithMetrics(path string, reg prometheus.Registerer) Option {
	return internal.WithMetrics(path, reg)
}

// WithStaticFiles mounts a static file handler at the given pattern.
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
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// Session options

func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

func WithSessionMaxAge(seconds int) SessionOption {
	return internal.WithSessionMaxAge(seconds)
}

func WithSessionDomain(domain string) SessionOption {
	return internal.WithSessionDomain(domain)
}

func WithSessionPath(path string) SessionOption {
	return internal.WithSessionPath(path)
}

func WithSessionSecure(secure bool) SessionOption {
	return internal.WithSessionSecure(secure)
}

func WithSessionHTTPOnly(httpOnly bool) SessionOption {
	return internal.WithSessionHTTPOnly(httpOnly)
}

func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return internal.WithSessionSameSite(sameSite)
}

// Run options

// Logger overrides the logger used for server lifecycle messages.
func Logger(l *slog.Logger) RunOption { return internal.Logger(l) }

// ShutdownTimeout sets the graceful shutdown timeout.
func ShutdownTimeout(d time.Duration) RunOption { return internal.ShutdownTimeout(d) }

// StartupHook registers a function run before the server accepts requests.
func StartupHook(fn func(context.Context) error) RunOption { return internal.StartupHook(fn) }

// ShutdownHook registers a cleanup function run during shutdown.
func ShutdownHook(fn func(context.Context) error) RunOption { return internal.ShutdownHook(fn) }

// WithContext sets the base context for signal handling.
func WithContext(ctx context.Context) RunOption { return internal.WithContext(ctx) }

// HTTP errors

// NewHTTPError creates an error carrying an HTTP status code.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// ErrNotFound makes the dispatcher answer with the 404 page.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrUnauthorized makes the dispatcher run the login action.
func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnauthorized(message, opts...)
}

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

func WithTitle(title string) HTTPErrorOption { return internal.WithTitle(title) }

func WithDetail(detail string) HTTPErrorOption { return internal.WithDetail(detail) }

func WithError(err error) HTTPErrorOption { return internal.WithError(err) }

// AsHTTPError returns the HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError { return internal.AsHTTPError(err) }

func IsNotFound(err error) bool { return internal.IsNotFound(err) }

func IsUnauthorized(err error) bool { return internal.IsUnauthorized(err) }

// Extractors

func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

func FromForm(name string) ExtractorSource { return internal.FromForm(name) }

func FromParams(params Params, name string) ExtractorSource {
	return internal.FromParams(params, name)
}

func FromSession(key string) ExtractorSource { return internal.FromSession(key) }

func FromBearerToken() ExtractorSource { return internal.FromBearerToken() }

// Generic helpers

// ContextValue returns the value stored with Context.Set, or the zero value.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param converts a route parameter, returning the zero value on failure.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](params Params, name string) T {
	return internal.Param[T](params, name)
}

// Query converts a query parameter, returning the zero value on failure.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault converts a query parameter, returning defaultValue on failure.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// RepositoryAs returns a registered repository as T.
func RepositoryAs[T any](c Context, name string) (T, error) {
	return internal.RepositoryAs[T](c, name)
}
