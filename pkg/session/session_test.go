package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forgemvc/pkg/session"
)

func TestSession_New(t *testing.T) {
	t.Parallel()

	sess := session.New("id", "token", time.Now().Add(time.Hour))

	require.Equal(t, "id", sess.ID)
	require.Equal(t, "token", sess.Token)
	require.True(t, sess.IsNew())
	require.True(t, sess.IsDirty())
	require.NotNil(t, sess.Values)
	require.False(t, sess.IsExpired())
}

func TestSession_IsAuthenticated(t *testing.T) {
	t.Parallel()

	sess := session.New("id", "token", time.Now().Add(time.Hour))
	require.False(t, sess.IsAuthenticated())

	sess.SetValue(session.AuthenticatedKey, true)
	require.True(t, sess.IsAuthenticated())

	sess.SetValue(session.AuthenticatedKey, "yes")
	require.False(t, sess.IsAuthenticated(), "only a bool flag counts")
}

func TestSession_Values(t *testing.T) {
	t.Parallel()

	sess := session.New("id", "token", time.Now().Add(time.Hour))
	sess.ClearDirty()

	sess.SetValue("name", "alice")
	require.True(t, sess.IsDirty())

	v, ok := sess.GetValue("name")
	require.True(t, ok)
	require.Equal(t, "alice", v)

	sess.ClearDirty()
	sess.DeleteValue("missing")
	require.False(t, sess.IsDirty(), "deleting a missing key is a no-op")

	sess.DeleteValue("name")
	require.True(t, sess.IsDirty())
	_, ok = sess.GetValue("name")
	require.False(t, ok)
}

func TestSession_Clear(t *testing.T) {
	t.Parallel()

	sess := session.New("id", "token", time.Now().Add(time.Hour))
	sess.SetValue("a", 1)
	sess.SetValue("b", 2)
	sess.ClearDirty()

	sess.Clear()
	require.True(t, sess.IsDirty())
	require.Empty(t, sess.Values)
}

func TestSession_Clone(t *testing.T) {
	t.Parallel()

	sess := session.New("id", "token", time.Now().Add(time.Hour))
	sess.SetValue("a", 1)

	c := sess.Clone()
	c.SetValue("a", 2)

	require.Equal(t, 1, session.ValueOr(sess, "a", 0))
	require.Equal(t, 2, session.ValueOr(c, "a", 0))

	var nilSession *session.Session
	require.Nil(t, nilSession.Clone())
}

func TestValue(t *testing.T) {
	t.Parallel()

	sess := session.New("id", "token", time.Now().Add(time.Hour))
	sess.SetValue("count", 42)

	n, err := session.Value[int](sess, "count")
	require.NoError(t, err)
	require.Equal(t, 42, n)

	_, err = session.Value[string](sess, "count")
	require.ErrorIs(t, err, session.ErrTypeMismatch)

	_, err = session.Value[int](sess, "missing")
	require.ErrorIs(t, err, session.ErrNotFound)

	_, err = session.Value[int](nil, "count")
	require.ErrorIs(t, err, session.ErrNotFound)

	require.Equal(t, "fallback", session.ValueOr(sess, "count", "fallback"))
}
