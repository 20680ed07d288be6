// Package cache provides a small generic cache with in-memory and Redis
// backends.
//
// The framework uses it for session storage (see session.NewMemoryStore and
// session.NewRedisStore) and for parsed view templates.
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the backend's default TTL
//   - Negative: item never expires
//
// GetOrSet collapses concurrent misses for the same key on the same cache
// into one computation:
//
//	tmpl, err := cache.GetOrSet(ctx, c, name, func(ctx context.Context) (*T, time.Duration, error) {
//	    t, err := parse(name)
//	    return t, -1, err
//	})
package cache
