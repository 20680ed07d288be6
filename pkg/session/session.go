package session

import (
	"fmt"
	"maps"
	"time"
)

// AuthenticatedKey is the value key holding the authentication flag.
const AuthenticatedKey = "_authenticated"

// Session is server-side state bound to one browser via a cookie token.
type Session struct {
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
	Values    map[string]any `json:"values"`
	ID        string         `json:"id"`    // stable identifier, never sent to the client
	Token     string         `json:"token"` // cookie value, rotated on privilege change

	dirty bool
	isNew bool
}

// New creates a session with the given ID and token.
func New(id, token string, expiresAt time.Time) *Session {
	return &Session{
		ID:        id,
		Token:     token,
		Values:    make(map[string]any),
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
		isNew:     true,
		dirty:     true,
	}
}

// Clone returns a copy with its own Values map. Values themselves are
// shared, so callers replace rather than mutate slices and maps they store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Values = maps.Clone(s.Values)
	if c.Values == nil {
		c.Values = make(map[string]any)
	}
	return &c
}

// IsAuthenticated reports whether the authentication flag is set.
func (s *Session) IsAuthenticated() bool {
	return ValueOr(s, AuthenticatedKey, false)
}

// SetValue stores a value and marks the session dirty.
func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// GetValue retrieves a value.
func (s *Session) GetValue(key string) (any, bool) {
	if s == nil || s.Values == nil {
		return nil, false
	}
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes a value. The session becomes dirty only if the key existed.
func (s *Session) DeleteValue(key string) {
	if s.Values == nil {
		return
	}
	if _, exists := s.Values[key]; exists {
		delete(s.Values, key)
		s.dirty = true
	}
}

// Clear removes every value.
func (s *Session) Clear() {
	if len(s.Values) == 0 {
		return
	}
	s.Values = make(map[string]any)
	s.dirty = true
}

// IsDirty reports whether the session has unsaved changes.
func (s *Session) IsDirty() bool { return s.dirty }

// ClearDirty marks the session as saved.
func (s *Session) ClearDirty() { s.dirty = false }

// MarkDirty marks the session as needing a save.
func (s *Session) MarkDirty() { s.dirty = true }

// IsNew reports whether the session has not been persisted yet.
func (s *Session) IsNew() bool { return s.isNew }

// ClearNew marks the session as persisted.
func (s *Session) ClearNew() { s.isNew = false }

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Value returns the value for key asserted to T.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	val, ok := s.GetValue(key)
	if !ok {
		return zero, ErrNotFound
	}

	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: key %q holds %T", ErrTypeMismatch, key, val)
	}
	return typed, nil
}

// ValueOr is like Value but returns def on any failure.
func ValueOr[T any](s *Session, key string, def T) T {
	val, err := Value[T](s, key)
	if err != nil {
		return def
	}
	return val
}
