// Package session holds server-side session data, the persistence contract
// for it, and the per-form CSRF token ring kept inside a session.
//
// A Session is a bag of values addressed by opaque string keys plus the
// metadata needed to find it again: an ID that never leaves the server and
// a Token that travels in the cookie. Rotating the token (for example after
// login) invalidates the old cookie without losing the stored values.
//
// Stores:
//
//	store := session.NewMemoryStore()                  // single process
//	store := session.NewRedisStore(client, "session")  // shared, via pkg/redis
//	store := session.NewSQLStore(conn)           // pkg/db connection
//
// Stores that need one-time initialization (table bootstrap, connectivity
// check) implement Starter. The application starts them once per process.
//
// CSRF tokens:
//
//	token, err := session.IssueToken(sess, "comment", sess.ID)
//	ok := session.ValidateToken(sess, "comment", submitted)
//
// Each form keeps at most RingSize outstanding tokens. Issuing past the limit
// evicts the oldest. A token validates once.
package session
