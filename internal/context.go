package internal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/forgemvc/pkg/db"
	"github.com/dmitrymomot/forgemvc/pkg/logger"
	"github.com/dmitrymomot/forgemvc/pkg/view"
)

// DefaultLayout is the layout Render uses when none is given.
const DefaultLayout = "layout"

// Context is handed to every action. It embeds context.Context, so it can be
// passed to store and database calls directly.
type Context interface {
	context.Context

	// Request returns the incoming request.
	Request() *Request

	// Response returns the response being built.
	Response() *Response

	// Session returns the session gate for this request.
	Session() *Gate

	// ControllerName and ActionName identify the running action.
	ControllerName() string
	ActionName() string

	// IsDebug reports whether the app runs in debug mode.
	IsDebug() bool

	// View returns the render scope of this request, to set layout variables.
	View() (*view.View, error)

	// Render renders <controller>/<template> with vars, wrapped in layout.
	// An empty template means the action name. Without a layout argument
	// DefaultLayout is used; pass "" for none.
	Render(vars map[string]any, template string, layout ...string) (string, error)

	// RenderComponent renders a templ component into a string.
	RenderComponent(component templ.Component) (string, error)

	// Redirect answers 302 Found with an absolute Location built from url.
	Redirect(url string) (string, error)

	// Forward404 returns the NotFound error for the running action.
	Forward404() error

	// CSRFToken issues a single-use token for the named form.
	CSRFToken(form string) (string, error)

	// CheckCSRFToken validates the token submitted with the named form,
	// read from the _csrf_token field or the X-CSRF-Token header.
	CheckCSRFToken(form string) bool

	// DB returns the connection manager, or nil when none is configured.
	DB() *db.Manager

	// Repository returns a memoised repository by name.
	Repository(name string) (any, error)

	Logger() *slog.Logger
	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set and Get store request-scoped values.
	Set(key, value any)
	Get(key any) any
}

type requestContext struct {
	context.Context

	app        *App
	request    *Request
	response   *Response
	gate       *Gate
	view       *view.View
	values     map[any]any
	controller string
	action     string
}

func newContext(a *App, w *ResponseWriter, r *http.Request) *requestContext {
	return &requestContext{
		Context:  r.Context(),
		app:      a,
		request:  newRequest(r, a.basePath),
		response: newResponse(w),
		gate:     NewGate(r.Context()),
	}
}

// enter records the controller and action about to run.
func (c *requestContext) enter(controller, action string) {
	c.controller = controller
	c.action = action
	c.Context = logger.WithDispatch(c.Context, controller, action)
}

func (c *requestContext) Request() *Request      { return c.request }
func (c *requestContext) Response() *Response    { return c.response }
func (c *requestContext) Session() *Gate         { return c.gate }
func (c *requestContext) ControllerName() string { return c.controller }
func (c *requestContext) ActionName() string     { return c.action }
func (c *requestContext) IsDebug() bool          { return c.app.debug }
func (c *requestContext) DB() *db.Manager        { return c.app.db }
func (c *requestContext) Logger() *slog.Logger   { return c.app.logger }

func (c *requestContext) View() (*view.View, error) {
	if c.app.views == nil {
		return nil, ErrViewsNotConfigured
	}
	if c.view == nil {
		c.view = c.app.views.Scope(c, map[string]any{
			"request":  c.request,
			"response": c.response,
			"session":  c.gate,
			"base_url": c.request.BaseURL(),
		})
	}
	return c.view, nil
}

func (c *requestContext) Render(vars map[string]any, template string, layout ...string) (string, error) {
	v, err := c.View()
	if err != nil {
		return "", err
	}
	if template == "" {
		template = c.action
	}
	l := DefaultLayout
	if len(layout) > 0 {
		l = layout[0]
	}
	return v.Render(c.controller+"/"+template, vars, l)
}

func (c *requestContext) RenderComponent(component templ.Component) (string, error) {
	return view.RenderComponent(c, component)
}

func (c *requestContext) Redirect(url string) (string, error) {
	c.response.SetStatusCode(http.StatusFound, "Found")
	c.response.SetHeader("Location", c.request.AbsoluteURL(url))
	return "", nil
}

func (c *requestContext) Forward404() error {
	return ErrNotFound("Forwarded 404 page from " + c.controller + "/" + c.action)
}

func (c *requestContext) CSRFToken(form string) (string, error) {
	return c.gate.CSRFToken(form)
}

func (c *requestContext) CheckCSRFToken(form string) bool {
	token, ok := csrfTokenExtractor.Extract(c)
	if !ok {
		return false
	}
	return c.gate.CheckCSRFToken(form, token)
}

func (c *requestContext) Repository(name string) (any, error) {
	if c.app.db == nil {
		return nil, ErrDatabaseNotConfigured
	}
	return c.app.db.Repository(name)
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.app.logger.DebugContext(c, msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c, msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c, msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c, msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = value
}

func (c *requestContext) Get(key any) any {
	return c.values[key]
}
