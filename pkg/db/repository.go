package db

import (
	"context"
	"database/sql"
	"errors"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Repository runs queries on one connection. Embed it in application
// repositories.
type Repository struct {
	conn *Conn
}

// NewRepository binds a repository to conn.
func NewRepository(conn *Conn) Repository {
	return Repository{conn: conn}
}

// Conn returns the bound connection.
func (r Repository) Conn() *Conn { return r.conn }

// Execute runs a statement that returns no rows.
func (r Repository) Execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.conn.DB.ExecContext(ctx, r.conn.Rebind(query), args...)
}

// Fetch returns the first row or ErrNoRows.
func (r Repository) Fetch(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := r.FetchAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	return rows[0], nil
}

// FetchAll returns every row.
func (r Repository) FetchAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := r.conn.DB.QueryContext(ctx, r.conn.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = vals[i]
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

// WithTx runs fn in a transaction, rolling back on error or panic.
func WithTx(ctx context.Context, conn *Conn, fn func(tx *sql.Tx) error) error {
	tx, err := conn.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		return errors.Join(err, ignoreDone(tx.Rollback()))
	}
	return tx.Commit()
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}
