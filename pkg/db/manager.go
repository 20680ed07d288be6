package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// RepositoryFactory builds a repository bound to conn.
type RepositoryFactory func(conn *Conn) any

// Manager owns named connections and memoised repositories.
// It is safe for concurrent use.
type Manager struct {
	conns     map[string]*Conn
	repoConns map[string]string
	factories map[string]RepositoryFactory
	repos     map[string]any
	order     []string
	mu        sync.Mutex
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{
		conns:     make(map[string]*Conn),
		repoConns: make(map[string]string),
		factories: make(map[string]RepositoryFactory),
		repos:     make(map[string]any),
	}
}

// Connect opens a connection and registers it under name.
// The first registered connection is the default.
func (m *Manager) Connect(ctx context.Context, name string, p Params) (*Conn, error) {
	m.mu.Lock()
	_, exists := m.conns[name]
	m.mu.Unlock()
	if exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateConnection, name)
	}

	conn, err := Open(ctx, name, p)
	if err != nil {
		return nil, err
	}
	if err := m.Add(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// Add registers an already open connection under conn.Name.
func (m *Manager) Add(conn *Conn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.conns[conn.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateConnection, conn.Name)
	}
	m.conns[conn.Name] = conn
	m.order = append(m.order, conn.Name)
	return nil
}

// Connection returns the named connection, or the default for "".
func (m *Manager) Connection(name string) (*Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connection(name)
}

func (m *Manager) connection(name string) (*Conn, error) {
	if name == "" {
		if len(m.order) == 0 {
			return nil, ErrNoConnection
		}
		name = m.order[0]
	}
	conn, ok := m.conns[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownConnection, name)
	}
	return conn, nil
}

// Connections returns every connection in registration order.
func (m *Manager) Connections() []*Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Conn, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.conns[name])
	}
	return out
}

// SetRepositoryConnection binds the repository to a named connection.
// It only affects repositories not built yet.
func (m *Manager) SetRepositoryConnection(repo, conn string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.repoConns[repo] = conn
}

// RegisterRepository declares how to build the named repository.
func (m *Manager) RegisterRepository(name string, factory RepositoryFactory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factories[name] = factory
	delete(m.repos, name)
}

// Repository returns the named repository, building it on first use.
func (m *Manager) Repository(name string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if repo, ok := m.repos[name]; ok {
		return repo, nil
	}

	factory, ok := m.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRepository, name)
	}

	conn, err := m.connection(m.repoConns[name])
	if err != nil {
		return nil, fmt.Errorf("repository %q: %w", name, err)
	}

	repo := factory(conn)
	m.repos[name] = repo
	return repo, nil
}

// RepositoryAs is Repository with a type assertion.
func RepositoryAs[T any](m *Manager, name string) (T, error) {
	var zero T
	repo, err := m.Repository(name)
	if err != nil {
		return zero, err
	}
	typed, ok := repo.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q is %T", ErrUnknownRepository, name, repo)
	}
	return typed, nil
}

// Close closes every connection.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, name := range m.order {
		if err := m.conns[name].Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", name, err))
		}
	}
	m.conns = make(map[string]*Conn)
	m.repos = make(map[string]any)
	m.order = nil
	return errors.Join(errs...)
}

// Shutdown returns a shutdown hook closing every connection.
func Shutdown(m *Manager) func(context.Context) error {
	return func(context.Context) error {
		return m.Close()
	}
}
