package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/forgemvc/pkg/logger"
	"github.com/dmitrymomot/forgemvc/pkg/session"
)

const (
	defaultSessionCookieName = "__sid"
	defaultSessionMaxAge     = 86400 * 30
)

// SessionManager owns the session store and the session cookie.
// It is shared by every request; per-request state lives in the gate.
type SessionManager struct {
	store     session.Store
	logger    *slog.Logger
	startErr  error
	cookie    string
	domain    string
	path      string
	maxAge    int
	sameSite  http.SameSite
	startOnce sync.Once
	secure    bool
	httpOnly  bool
}

// SessionOption configures the SessionManager.
type SessionOption func(*SessionManager)

// NewSessionManager creates a SessionManager backed by store.
func NewSessionManager(store session.Store, opts ...SessionOption) *SessionManager {
	sm := &SessionManager{
		store:    store,
		logger:   logger.NewNope(),
		cookie:   defaultSessionCookieName,
		maxAge:   defaultSessionMaxAge,
		path:     "/",
		httpOnly: true,
		sameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(sm)
	}
	return sm
}

// WithSessionCookieName sets the session cookie name.
func WithSessionCookieName(name string) SessionOption {
	return func(sm *SessionManager) {
		if name != "" {
			sm.cookie = name
		}
	}
}

// WithSessionMaxAge sets the session lifetime in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return func(sm *SessionManager) {
		if seconds > 0 {
			sm.maxAge = seconds
		}
	}
}

func WithSessionDomain(domain string) SessionOption {
	return func(sm *SessionManager) {
		sm.domain = domain
	}
}

func WithSessionPath(path string) SessionOption {
	return func(sm *SessionManager) {
		if path != "" {
			sm.path = path
		}
	}
}

func WithSessionSecure(secure bool) SessionOption {
	return func(sm *SessionManager) {
		sm.secure = secure
	}
}

func WithSessionHTTPOnly(httpOnly bool) SessionOption {
	return func(sm *SessionManager) {
		sm.httpOnly = httpOnly
	}
}

func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return func(sm *SessionManager) {
		sm.sameSite = sameSite
	}
}

// SetLogger sets the logger for session events. Called by App.
func (sm *SessionManager) SetLogger(l *slog.Logger) {
	if l != nil {
		sm.logger = l
	}
}

// Start initializes the store at most once per manager. Later calls return
// the result of the first one.
func (sm *SessionManager) Start(ctx context.Context) error {
	sm.startOnce.Do(func() {
		st, ok := sm.store.(session.Starter)
		if !ok {
			return
		}
		if err := st.Start(context.WithoutCancel(ctx)); err != nil {
			sm.startErr = errors.Join(session.ErrStoreStart, err)
			sm.logger.ErrorContext(ctx, "session store start failed", slog.Any("error", err))
		}
	})
	return sm.startErr
}

// Token returns the session token sent by the client, or "".
func (sm *SessionManager) Token(r *http.Request) string {
	c, err := r.Cookie(sm.cookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// Load returns the session referenced by the request cookie.
// It returns nil, nil when the request carries no cookie, and nil with
// session.ErrNotFound or session.ErrExpired for a stale one.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*session.Session, error) {
	token := sm.Token(r)
	if token == "" {
		return nil, nil
	}
	return sm.store.Get(ctx, token)
}

// Create builds a new, not yet persisted session.
func (sm *SessionManager) Create() (*session.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}
	return session.New(uuid.NewString(), token, time.Now().Add(sm.lifetime())), nil
}

// Persist writes a new or dirty session to the store.
func (sm *SessionManager) Persist(ctx context.Context, sess *session.Session) error {
	switch {
	case sess.IsNew():
		if err := sm.store.Create(ctx, sess); err != nil {
			return err
		}
	case sess.IsDirty():
		if err := sm.store.Update(ctx, sess); err != nil {
			return err
		}
	default:
		return nil
	}
	sess.ClearNew()
	sess.ClearDirty()
	return nil
}

// Regenerate moves the values of old into a session with a fresh ID and
// token. With destroy set the old record is deleted, otherwise it stays
// valid until it expires.
func (sm *SessionManager) Regenerate(ctx context.Context, old *session.Session, destroy bool) (*session.Session, error) {
	fresh, err := sm.Create()
	if err != nil {
		return nil, err
	}
	fresh.Values = old.Clone().Values
	fresh.CreatedAt = old.CreatedAt

	if destroy && !old.IsNew() {
		if err := sm.store.Delete(ctx, old.ID); err != nil {
			return nil, err
		}
	}
	return fresh, nil
}

// RotateToken issues a new token for the same session ID.
func (sm *SessionManager) RotateToken(ctx context.Context, sess *session.Session) error {
	oldToken := sess.Token
	newToken, err := generateToken()
	if err != nil {
		return fmt.Errorf("generate session token: %w", err)
	}
	sess.Token = newToken
	sess.MarkDirty()

	if sess.IsNew() {
		return nil
	}
	if err := sm.store.Update(ctx, sess); err != nil {
		sess.Token = oldToken
		return err
	}
	sess.ClearDirty()
	return nil
}

// Save writes the session cookie.
func (sm *SessionManager) Save(w http.ResponseWriter, sess *session.Session) {
	http.SetCookie(w, sm.newCookie(sess.Token, sm.maxAge))
}

// Destroy deletes the session record and expires the cookie.
func (sm *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, sess *session.Session) error {
	http.SetCookie(w, sm.newCookie("", -1))
	if sess == nil || sess.IsNew() {
		return nil
	}
	return sm.store.Delete(ctx, sess.ID)
}

// Store returns the underlying session store.
func (sm *SessionManager) Store() session.Store {
	return sm.store
}

func (sm *SessionManager) lifetime() time.Duration {
	return time.Duration(sm.maxAge) * time.Second
}

func (sm *SessionManager) newCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sm.cookie,
		Value:    value,
		Path:     sm.path,
		Domain:   sm.domain,
		MaxAge:   maxAge,
		Secure:   sm.secure,
		HttpOnly: sm.httpOnly,
		SameSite: sm.sameSite,
	}
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
