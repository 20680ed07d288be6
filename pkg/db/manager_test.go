package db_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/forgemvc/pkg/db"
)

func openMemory(t *testing.T, name string) *db.Conn {
	t.Helper()
	conn, err := db.Open(context.Background(), name, db.Params{Driver: db.SQLite, DSN: ":memory:"})
	require.NoError(t, err)
	return conn
}

type userRepo struct {
	db.Repository
}

func TestManager_DefaultConnectionIsFirst(t *testing.T) {
	t.Parallel()

	m := db.NewManager()
	t.Cleanup(func() { _ = m.Close() })

	_, err := m.Connection("")
	require.ErrorIs(t, err, db.ErrNoConnection)

	require.NoError(t, m.Add(openMemory(t, "master")))
	require.NoError(t, m.Add(openMemory(t, "replica")))

	def, err := m.Connection("")
	require.NoError(t, err)
	require.Equal(t, "master", def.Name)

	conns := m.Connections()
	require.Len(t, conns, 2)
	require.Equal(t, "replica", conns[1].Name)

	_, err = m.Connection("missing")
	require.ErrorIs(t, err, db.ErrUnknownConnection)

	dup := openMemory(t, "master")
	t.Cleanup(func() { _ = dup.Close() })
	require.ErrorIs(t, m.Add(dup), db.ErrDuplicateConnection)
}

func TestManager_RepositoryMemoisedAndBound(t *testing.T) {
	t.Parallel()

	m := db.NewManager()
	t.Cleanup(func() { _ = m.Close() })
	require.NoError(t, m.Add(openMemory(t, "master")))
	require.NoError(t, m.Add(openMemory(t, "audit")))

	builds := 0
	factory := func(c *db.Conn) any {
		builds++
		return &userRepo{Repository: db.NewRepository(c)}
	}
	m.RegisterRepository("user", factory)
	m.RegisterRepository("log", factory)
	m.SetRepositoryConnection("log", "audit")

	first, err := db.RepositoryAs[*userRepo](m, "user")
	require.NoError(t, err)
	second, err := db.RepositoryAs[*userRepo](m, "user")
	require.NoError(t, err)
	require.Same(t, first, second)
	require.Equal(t, "master", first.Conn().Name)

	logRepo, err := db.RepositoryAs[*userRepo](m, "log")
	require.NoError(t, err)
	require.Equal(t, "audit", logRepo.Conn().Name)
	require.Equal(t, 2, builds)

	_, err = m.Repository("missing")
	require.ErrorIs(t, err, db.ErrUnknownRepository)

	_, err = db.RepositoryAs[string](m, "user")
	require.ErrorIs(t, err, db.ErrUnknownRepository)
}

func TestManager_RepositoryOnUnknownConnection(t *testing.T) {
	t.Parallel()

	m := db.NewManager()
	m.RegisterRepository("user", func(c *db.Conn) any { return c })

	_, err := m.Repository("user")
	require.ErrorIs(t, err, db.ErrNoConnection)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	_, err := db.Open(context.Background(), "x", db.Params{Driver: "mysql"})
	require.ErrorIs(t, err, db.ErrUnsupportedDriver)
}

func TestRebind(t *testing.T) {
	t.Parallel()

	q := "SELECT * FROM t WHERE a = ? AND b = ?"
	require.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", db.Rebind(db.Postgres, q))
	require.Equal(t, q, db.Rebind(db.SQLite, q))
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	m := db.NewManager()
	conn := openMemory(t, "master")
	require.NoError(t, m.Add(conn))

	require.NoError(t, db.Shutdown(m)(context.Background()))
	require.Error(t, conn.DB.Ping())
}
