package internal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/forgemvc/pkg/session"
)

type requestSessionKey struct{}

// requestSession is the session state of one request. Every Gate built for
// the request shares it, so the session is loaded once and its ID is
// regenerated at most once.
type requestSession struct {
	mgr         *SessionManager
	req         *http.Request
	w           *ResponseWriter
	logger      *slog.Logger
	sess        *session.Session
	clientToken string
	loaded      bool
	regenerated bool
	destroyed   bool
}

// withRequestSession attaches fresh session state to r and registers the
// hook persisting it before the response is written.
func withRequestSession(r *http.Request, w *ResponseWriter, mgr *SessionManager, log *slog.Logger) *http.Request {
	if mgr == nil {
		return r
	}
	rs := &requestSession{mgr: mgr, req: r, w: w, logger: log}
	w.OnBeforeWrite(func() { rs.flush(r.Context()) })
	return r.WithContext(context.WithValue(r.Context(), requestSessionKey{}, rs))
}

func (rs *requestSession) load(ctx context.Context) (*session.Session, error) {
	if rs.loaded {
		return rs.sess, nil
	}
	if err := rs.mgr.Start(ctx); err != nil {
		return nil, err
	}

	sess, err := rs.mgr.Load(ctx, rs.req)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		sess = nil
	case err != nil:
		return nil, err
	}

	rs.sess = sess
	rs.clientToken = rs.mgr.Token(rs.req)
	rs.loaded = true
	return sess, nil
}

func (rs *requestSession) ensure(ctx context.Context) (*session.Session, error) {
	sess, err := rs.load(ctx)
	if err != nil || sess != nil {
		return sess, err
	}
	sess, err = rs.mgr.Create()
	if err != nil {
		return nil, err
	}
	rs.sess = sess
	rs.destroyed = false
	return sess, nil
}

// flush persists the session and refreshes the cookie when the token changed.
// Errors are logged; the response is already on its way.
func (rs *requestSession) flush(ctx context.Context) {
	if rs.destroyed || rs.sess == nil {
		return
	}
	if err := rs.mgr.Persist(ctx, rs.sess); err != nil {
		rs.logger.ErrorContext(ctx, "failed to save session", slog.Any("error", err))
		return
	}
	if rs.sess.Token != rs.clientToken {
		rs.mgr.Save(rs.w, rs.sess)
		rs.clientToken = rs.sess.Token
	}
}

// Gate is the request-scoped session facade handed to controllers.
// Without a configured session store it reports unauthenticated, returns
// defaults from Get and session.ErrNotConfigured from mutations.
type Gate struct {
	ctx   context.Context
	state *requestSession
}

// NewGate returns a gate over the session state carried by ctx and starts
// the store on first use.
func NewGate(ctx context.Context) *Gate {
	rs, _ := ctx.Value(requestSessionKey{}).(*requestSession)
	g := &Gate{ctx: ctx, state: rs}
	if rs != nil {
		_ = rs.mgr.Start(ctx)
	}
	return g
}

func (g *Gate) current() *session.Session {
	if g.state == nil {
		return nil
	}
	sess, err := g.state.load(g.ctx)
	if err != nil {
		g.state.logger.ErrorContext(g.ctx, "failed to load session", slog.Any("error", err))
		return nil
	}
	return sess
}

func (g *Gate) writable() (*session.Session, error) {
	if g.state == nil {
		return nil, session.ErrNotConfigured
	}
	return g.state.ensure(g.ctx)
}

// ID returns the session ID, or "" when there is no session.
func (g *Gate) ID() string {
	if sess := g.current(); sess != nil {
		return sess.ID
	}
	return ""
}

// IsAuthenticated reports the authentication flag.
func (g *Gate) IsAuthenticated() bool {
	return g.current().IsAuthenticated()
}

// SetAuthenticated stores the flag. Setting it to true regenerates the
// session ID and deletes the old record; clearing it keeps the ID.
func (g *Gate) SetAuthenticated(v bool) error {
	sess, err := g.writable()
	if err != nil {
		return err
	}
	sess.SetValue(session.AuthenticatedKey, v)
	if v {
		return g.RegenerateID(true)
	}
	return nil
}

// Get returns the value stored under key, or def.
func (g *Gate) Get(key string, def any) any {
	if v, ok := g.current().GetValue(key); ok {
		return v
	}
	return def
}

// Set stores a value, creating the session if needed.
func (g *Gate) Set(key string, val any) error {
	sess, err := g.writable()
	if err != nil {
		return err
	}
	sess.SetValue(key, val)
	return nil
}

// Delete removes a value.
func (g *Gate) Delete(key string) error {
	if g.state == nil {
		return session.ErrNotConfigured
	}
	if sess := g.current(); sess != nil {
		sess.DeleteValue(key)
	}
	return nil
}

// Clear removes every value, the authentication flag included.
func (g *Gate) Clear() error {
	if g.state == nil {
		return session.ErrNotConfigured
	}
	if sess := g.current(); sess != nil {
		sess.Clear()
	}
	return nil
}

// RegenerateID moves the session to a new ID and token. Only the first call
// in a request has an effect.
func (g *Gate) RegenerateID(destroy bool) error {
	sess, err := g.writable()
	if err != nil {
		return err
	}
	if g.state.regenerated {
		return nil
	}

	fresh, err := g.state.mgr.Regenerate(g.ctx, sess, destroy)
	if err != nil {
		return err
	}
	g.state.sess = fresh
	g.state.regenerated = true
	return nil
}

// RotateToken gives the session a new cookie token and keeps its ID and
// values, for privilege changes that do not flip authentication such as a
// password change. The old token stops resolving immediately.
func (g *Gate) RotateToken() error {
	sess, err := g.writable()
	if err != nil {
		return err
	}
	return g.state.mgr.RotateToken(g.ctx, sess)
}

// Destroy deletes the session and expires its cookie.
func (g *Gate) Destroy() error {
	if g.state == nil {
		return session.ErrNotConfigured
	}
	sess := g.current()
	if err := g.state.mgr.Destroy(g.ctx, g.state.w, sess); err != nil {
		return err
	}
	g.state.sess = nil
	g.state.destroyed = true
	return nil
}

// CSRFToken issues a single-use token for the named form.
func (g *Gate) CSRFToken(form string) (string, error) {
	sess, err := g.writable()
	if err != nil {
		return "", err
	}
	return session.IssueToken(sess, form, sess.ID)
}

// CheckCSRFToken validates and consumes a token issued for the named form.
func (g *Gate) CheckCSRFToken(form, token string) bool {
	sess := g.current()
	if sess == nil {
		return false
	}
	return session.ValidateToken(sess, form, token)
}
