package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver names a supported database backend.
type Driver string

const (
	Postgres Driver = "pgx"
	SQLite   Driver = "sqlite"
)

// Params describes one connection.
type Params struct {
	Driver Driver
	DSN    string

	// MaxConns caps the pool size. Zero keeps the driver default.
	MaxConns int32
	// RetryAttempts and RetryInterval control startup retries with a linear
	// backoff. Defaults: 3 attempts, 2 seconds.
	RetryAttempts int
	RetryInterval time.Duration
}

// Conn is an open, named connection.
type Conn struct {
	DB     *sql.DB
	pool   *pgxpool.Pool
	Name   string
	Driver Driver
}

// Open connects according to p and verifies the connection with a ping.
func Open(ctx context.Context, name string, p Params) (*Conn, error) {
	if p.RetryAttempts <= 0 {
		p.RetryAttempts = 3
	}
	if p.RetryInterval <= 0 {
		p.RetryInterval = 2 * time.Second
	}

	switch p.Driver {
	case Postgres:
		return openPostgres(ctx, name, p)
	case SQLite:
		return openSQLite(ctx, name, p)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, p.Driver)
	}
}

// NewConn wraps an already open database handle.
func NewConn(name string, driver Driver, db *sql.DB) *Conn {
	return &Conn{Name: name, Driver: driver, DB: db}
}

func openPostgres(ctx context.Context, name string, p Params) (*Conn, error) {
	cfg, err := pgxpool.ParseConfig(p.DSN)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	if p.MaxConns > 0 {
		cfg.MaxConns = p.MaxConns
	}

	var lastErr error
	for i := range p.RetryAttempts {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return &Conn{Name: name, Driver: Postgres, DB: stdlib.OpenDBFromPool(pool), pool: pool}, nil
			}
			pool.Close()
		}
		lastErr = err
		if i == p.RetryAttempts-1 {
			break
		}

		if err := backoff(ctx, i, p.RetryInterval); err != nil {
			return nil, errors.Join(ErrFailedToOpenDBConnection, err)
		}
	}

	return nil, errors.Join(ErrFailedToOpenDBConnection, lastErr)
}

func openSQLite(ctx context.Context, name string, p Params) (*Conn, error) {
	db, err := sql.Open(string(SQLite), p.DSN)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	if strings.Contains(p.DSN, ":memory:") {
		// Every pooled connection would get its own empty database.
		db.SetMaxOpenConns(1)
	} else if p.MaxConns > 0 {
		db.SetMaxOpenConns(int(p.MaxConns))
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrFailedToOpenDBConnection, err)
	}
	return &Conn{Name: name, Driver: SQLite, DB: db}, nil
}

func backoff(ctx context.Context, attempt int, interval time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(attempt+1) * interval):
		return nil
	}
}

// Rebind rewrites ? placeholders for the connection's driver.
func (c *Conn) Rebind(query string) string {
	return Rebind(c.Driver, query)
}

// Close releases the handle and, for PostgreSQL, the pool behind it.
func (c *Conn) Close() error {
	err := c.DB.Close()
	if c.pool != nil {
		c.pool.Close()
	}
	return err
}

// Healthcheck returns a readiness check pinging the connection.
func (c *Conn) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		if err := c.DB.PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// Rebind rewrites ? placeholders into $n for PostgreSQL and leaves other
// drivers untouched. Question marks inside quoted literals are not detected.
func Rebind(driver Driver, query string) string {
	if driver != Postgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
