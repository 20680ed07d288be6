package internal

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/forgemvc/pkg/logger"
	"github.com/dmitrymomot/forgemvc/pkg/metrics"
	"github.com/dmitrymomot/forgemvc/pkg/route"
)

// ErrorHandler renders a fatal dispatch error. It runs only while the
// response has not been sent.
type ErrorHandler func(c Context, err error)

const notFoundMessage = "Page not found."

const notFoundPage = `<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Transitional//EN"
"http://www.w3.org/TR/xhtml1/DTD/xhtml1-transitional.dtd">
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=utf-8" />
    <title>404</title>
</head>
<body>
    %s
</body>
</html>
`

const errorPage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8" />
    <title>%d</title>
</head>
<body>
    %s
</body>
</html>
`

// serveDispatch runs one dispatch cycle and sends exactly one response.
func (a *App) serveDispatch(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w)
	r = withRequestSession(r, rw, a.sessionManager, a.logger)
	c := newContext(a, rw, r)

	start := time.Now()
	out, err := a.dispatcher.dispatch(c, c.request.PathInfo())
	if err == nil && out.Kind == OutcomeUnauthorized {
		a.metrics.ObserveLoginDispatch()
		out, err = a.dispatchLogin(c, out)
	}
	if err != nil {
		a.metrics.ObserveDispatch(metrics.KindError, c.controller, time.Since(start))
		a.handleError(c, err)
		return
	}
	a.metrics.ObserveDispatch(out.Kind.String(), out.Controller, time.Since(start))

	switch out.Kind {
	case OutcomeNotFound:
		a.logger.DebugContext(c, "not found", slog.String("reason", out.Reason))
		a.render404(c.response, out.Reason)
	default:
		c.response.SetContent(out.Body)
	}

	if err := c.response.Send(); err != nil {
		a.logger.ErrorContext(c, "failed to send response", slog.Any("error", err))
	}
}

// dispatchLogin replaces an unauthorized outcome with the login action's.
// The login action must itself succeed; anything else is fatal.
func (a *App) dispatchLogin(c *requestContext, denied Outcome) (Outcome, error) {
	if a.loginController == "" {
		return Outcome{}, fmt.Errorf("%w: none configured (denied %s/%s)", ErrLoginActionUnavailable, denied.Controller, denied.Action)
	}

	a.logger.DebugContext(c, "unauthorized, dispatching login action",
		slog.String("denied_controller", denied.Controller),
		slog.String("denied_action", denied.Action),
	)

	c.response.reset()
	params := route.Params{route.ControllerKey: a.loginController, route.ActionKey: a.loginAction}
	out, err := a.dispatcher.run(c, a.loginController, a.loginAction, params)
	if err != nil {
		return Outcome{}, err
	}
	if out.Kind != OutcomeOK {
		return Outcome{}, fmt.Errorf("%w: %s/%s ended %s: %s",
			ErrLoginActionUnavailable, a.loginController, a.loginAction, out.Kind, out.Reason)
	}
	return out, nil
}

func (a *App) render404(resp *Response, reason string) {
	msg := notFoundMessage
	if a.debug {
		msg = reason
	}
	resp.reset()
	resp.SetStatusCode(http.StatusNotFound, "Not Found")
	resp.SetContent(fmt.Sprintf(notFoundPage, html.EscapeString(msg)))
}

// handleError logs a fatal error and hands it to the error handler.
func (a *App) handleError(c *requestContext, err error) {
	a.logger.ErrorContext(c, "dispatch failed", slog.Any("error", err))
	if c.response.Sent() {
		return
	}
	if he := AsHTTPError(err); he != nil && he.RequestID == "" {
		he.RequestID = logger.RequestID(c)
	}
	c.response.reset()
	a.errorHandler(c, err)
	if !c.response.Sent() {
		_ = c.response.Send()
	}
}

// defaultErrorHandler renders a minimal error page. The error text is shown
// in debug mode only.
func defaultErrorHandler(c Context, err error) {
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	if he := AsHTTPError(err); he != nil && he.Code >= 400 {
		code = he.Code
		msg = he.Message
	}
	if c.IsDebug() {
		msg = err.Error()
	}

	resp := c.Response()
	resp.SetStatusCode(code, "")
	resp.SetContent(fmt.Sprintf(errorPage, code, html.EscapeString(msg)))
	_ = resp.Send()
}

// recoverResponder routes a recovered panic to the error handler, unless the
// response already went out.
func (a *App) recoverResponder(w http.ResponseWriter, r *http.Request, err error) {
	rw := NewResponseWriter(w)
	if rw.Written() {
		return
	}
	a.handleError(newContext(a, rw, r), ErrInternal(http.StatusText(http.StatusInternalServerError), WithError(err)))
}
