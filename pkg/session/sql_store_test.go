package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forgemvc/pkg/db"
	"github.com/dmitrymomot/forgemvc/pkg/session"
)

func newSQLStore(t *testing.T) *session.SQLStore {
	t.Helper()

	conn, err := db.Open(context.Background(), "sessions", db.Params{Driver: db.SQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	store := session.NewSQLStore(conn, session.WithTable("web_sessions"))
	require.NoError(t, store.Start(context.Background()))
	return store
}

func TestSQLStore_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newSQLStore(t)

	// Start is safe to repeat.
	require.NoError(t, store.Start(ctx))

	sess := session.New("id-1", "token-1", time.Now().Add(time.Hour))
	sess.SetValue(session.AuthenticatedKey, true)
	_, err := session.IssueToken(sess, "comment", sess.ID)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, "token-1")
	require.NoError(t, err)
	require.True(t, got.IsAuthenticated())
	require.Len(t, session.Tokens(got, "comment"), 1)

	got.Token = "token-2"
	got.SetValue("name", "alice")
	require.NoError(t, store.Update(ctx, got))

	_, err = store.Get(ctx, "token-1")
	require.ErrorIs(t, err, session.ErrNotFound)

	rotated, err := store.Get(ctx, "token-2")
	require.NoError(t, err)
	require.Equal(t, "alice", session.ValueOr(rotated, "name", ""))

	require.NoError(t, store.Delete(ctx, "id-1"))
	_, err = store.Get(ctx, "token-2")
	require.ErrorIs(t, err, session.ErrNotFound)
}

func TestSQLStore_Expired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newSQLStore(t)

	sess := session.New("id-1", "token-1", time.Now().Add(-time.Minute))
	require.NoError(t, store.Create(ctx, sess))

	n, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	sess = session.New("id-2", "token-2", time.Now().Add(-time.Minute))
	require.NoError(t, store.Create(ctx, sess))
	_, err = store.Get(ctx, "token-2")
	require.ErrorIs(t, err, session.ErrExpired)
}

func TestSQLStore_UpdateMissing(t *testing.T) {
	t.Parallel()
	store := newSQLStore(t)

	sess := session.New("ghost", "t", time.Now().Add(time.Hour))
	require.ErrorIs(t, store.Update(context.Background(), sess), session.ErrNotFound)
}
