package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dmitrymomot/forgemvc/pkg/db"
)

const defaultSQLTable = "sessions"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore persists sessions in a relational table on a db connection.
// Values are stored as a JSON document.
type SQLStore struct {
	conn  *db.Conn
	table string
}

// SQLOption configures SQLStore.
type SQLOption func(*SQLStore)

// WithTable overrides the table name. Invalid identifiers are ignored.
func WithTable(name string) SQLOption {
	return func(s *SQLStore) {
		if tableNamePattern.MatchString(name) {
			s.table = name
		}
	}
}

// NewSQLStore creates a store on conn (PostgreSQL or SQLite).
// Call Start (or let the application do it) to create the table.
func NewSQLStore(conn *db.Conn, opts ...SQLOption) *SQLStore {
	s := &SQLStore{conn: conn, table: defaultSQLTable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the sessions table if it is missing.
func (s *SQLStore) Start(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
	id TEXT PRIMARY KEY,
	token TEXT NOT NULL UNIQUE,
	data TEXT NOT NULL,
	created_at BIGINT NOT NULL,
	expires_at BIGINT NOT NULL
)`
	if _, err := s.conn.DB.ExecContext(ctx, ddl); err != nil {
		return errors.Join(ErrStoreStart, err)
	}
	return nil
}

// Create inserts a new session row.
func (s *SQLStore) Create(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess.Values)
	if err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}

	_, err = s.conn.DB.ExecContext(ctx,
		s.conn.Rebind(`INSERT INTO `+s.table+` (id, token, data, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`),
		sess.ID, sess.Token, string(data), sess.CreatedAt.UnixMilli(), sess.ExpiresAt.UnixMilli(),
	)
	return err
}

// Get loads a session by token. Expired rows are deleted.
func (s *SQLStore) Get(ctx context.Context, token string) (*Session, error) {
	var (
		sess               Session
		data               string
		created, expiresAt int64
	)

	row := s.conn.DB.QueryRowContext(ctx,
		s.conn.Rebind(`SELECT id, token, data, created_at, expires_at FROM `+s.table+` WHERE token = ?`),
		token,
	)
	if err := row.Scan(&sess.ID, &sess.Token, &data, &created, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess.CreatedAt = time.UnixMilli(created)
	sess.ExpiresAt = time.UnixMilli(expiresAt)
	if sess.IsExpired() {
		_ = s.Delete(ctx, sess.ID)
		return nil, ErrExpired
	}

	if err := json.Unmarshal([]byte(data), &sess.Values); err != nil {
		return nil, fmt.Errorf("decode session values: %w", err)
	}
	if sess.Values == nil {
		sess.Values = make(map[string]any)
	}

	return &sess, nil
}

// Update writes values, token and expiry of an existing row.
func (s *SQLStore) Update(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess.Values)
	if err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}

	res, err := s.conn.DB.ExecContext(ctx,
		s.conn.Rebind(`UPDATE `+s.table+` SET token = ?, data = ?, expires_at = ? WHERE id = ?`),
		sess.Token, string(data), sess.ExpiresAt.UnixMilli(), sess.ID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a row by session ID.
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	_, err := s.conn.DB.ExecContext(ctx, s.conn.Rebind(`DELETE FROM `+s.table+` WHERE id = ?`), id)
	return err
}

// DeleteExpired removes rows past their expiry and reports how many went.
func (s *SQLStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.conn.DB.ExecContext(ctx,
		s.conn.Rebind(`DELETE FROM `+s.table+` WHERE expires_at < ?`),
		time.Now().UnixMilli(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var (
	_ Store   = (*SQLStore)(nil)
	_ Starter = (*SQLStore)(nil)
)
