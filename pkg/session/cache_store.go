package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/forgemvc/pkg/cache"
)

// CacheStore keeps sessions in a pair of caches: sessions by ID and
// a token index pointing at the ID.
type CacheStore struct {
	sessions cache.Cache[Session]
	tokens   cache.Cache[string]
	ping     func(ctx context.Context) error
}

// NewCacheStore builds a store on top of arbitrary cache backends.
func NewCacheStore(sessions cache.Cache[Session], tokens cache.Cache[string]) *CacheStore {
	return &CacheStore{sessions: sessions, tokens: tokens}
}

// NewMemoryStore returns a process-local store. Sessions are lost on restart.
func NewMemoryStore(opts ...cache.MemoryOption) *CacheStore {
	return NewCacheStore(cache.NewMemory[Session](opts...), cache.NewMemory[string](opts...))
}

// NewRedisStore returns a store shared across processes through Redis.
// The client should come from pkg/redis.Open. Keys live under namespace
// ("session" when empty).
func NewRedisStore(client redis.UniversalClient, namespace string) *CacheStore {
	if namespace == "" {
		namespace = "session"
	}
	s := NewCacheStore(
		cache.NewRedis[Session](client, nil, cache.WithPrefix(namespace)),
		cache.NewRedis[string](client, nil, cache.WithPrefix(namespace+"_token")),
	)
	s.ping = func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
	return s
}

// Start checks backend connectivity when the backend is remote.
func (s *CacheStore) Start(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	if err := s.ping(ctx); err != nil {
		return errors.Join(ErrStoreStart, err)
	}
	return nil
}

// Create persists a new session.
func (s *CacheStore) Create(ctx context.Context, sess *Session) error {
	return s.put(ctx, sess)
}

// Get retrieves a session by token. Expired sessions are removed.
func (s *CacheStore) Get(ctx context.Context, token string) (*Session, error) {
	id, err := s.tokens.Get(ctx, token)
	if err != nil {
		return nil, translateCacheErr(err)
	}

	stored, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, translateCacheErr(err)
	}
	if stored.Token != token {
		// Stale index entry left behind by a rotation.
		_ = s.tokens.Delete(ctx, token)
		return nil, ErrNotFound
	}
	if stored.IsExpired() {
		_ = s.Delete(ctx, id)
		return nil, ErrExpired
	}

	loaded := stored.Clone()
	loaded.ClearNew()
	loaded.ClearDirty()
	return loaded, nil
}

// Update saves the session and moves the token index when the token changed.
func (s *CacheStore) Update(ctx context.Context, sess *Session) error {
	prev, err := s.sessions.Get(ctx, sess.ID)
	switch {
	case err == nil:
		if prev.Token != sess.Token {
			if err := s.tokens.Delete(ctx, prev.Token); err != nil {
				return err
			}
		}
	case errors.Is(err, cache.ErrNotFound):
		return ErrNotFound
	default:
		return err
	}
	return s.put(ctx, sess)
}

// Delete removes a session and its token index.
func (s *CacheStore) Delete(ctx context.Context, id string) error {
	prev, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.tokens.Delete(ctx, prev.Token); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

// Close releases both caches. Remote clients stay open.
func (s *CacheStore) Close() error {
	return errors.Join(s.sessions.Close(), s.tokens.Close())
}

func (s *CacheStore) put(ctx context.Context, sess *Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}
	// The stored copy is a persisted record: neither new nor dirty.
	stored := sess.Clone()
	stored.ClearNew()
	stored.ClearDirty()
	if err := s.sessions.Set(ctx, sess.ID, *stored, ttl); err != nil {
		return err
	}
	return s.tokens.Set(ctx, sess.Token, sess.ID, ttl)
}

func translateCacheErr(err error) error {
	if errors.Is(err, cache.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

var (
	_ Store   = (*CacheStore)(nil)
	_ Starter = (*CacheStore)(nil)
)
