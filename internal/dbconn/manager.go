// Package dbconn owns the single database handle shared by the SQL-backed
// repositories.
//
// A Manager opens its handle lazily on first use and keeps it until it is
// closed, after which the next call opens a new one. Configuration is read
// only when a handle is created, so Configure has no effect on a handle
// that already exists.
package dbconn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Driver names registered with database/sql
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Config describes how to reach the database. DSN wins over the discrete fields.
type Config struct {
	Driver   string
	DSN      string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
}

// DefaultConfig returns the local PostgreSQL defaults
func DefaultConfig() Config {
	return Config{
		Driver: DriverPostgres,
		Host:   "localhost",
		Port:   5433,
		Name:   "travel_agency",
		User:   "postgres",
	}
}

// DataSource returns the driver name and connection string
func (c Config) DataSource() (driver, dsn string, err error) {
	driver = c.Driver
	if driver == "" {
		driver = DriverPostgres
	}

	switch driver {
	case DriverPostgres, "postgres":
		if c.DSN != "" {
			return DriverPostgres, c.DSN, nil
		}
		u := url.URL{
			Scheme:   "postgres",
			Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
			Path:     "/" + c.Name,
			RawQuery: "sslmode=disable",
		}
		if c.User != "" {
			if c.Password != "" {
				u.User = url.UserPassword(c.User, c.Password)
			} else {
				u.User = url.User(c.User)
			}
		}
		return DriverPostgres, u.String(), nil
	case DriverSQLite, "sqlite3":
		dsn = c.DSN
		if dsn == "" {
			dsn = c.Name
		}
		if dsn == "" {
			return "", "", errors.New("sqlite requires a database path")
		}
		return DriverSQLite, dsn, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// OpenFunc opens a database handle. Replaced in tests.
type OpenFunc func(driver, dsn string) (*sql.DB, error)

// Manager lazily creates and hands out one *sql.DB
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	db     *sql.DB
	open   OpenFunc
	opened int
	logger *zap.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the manager's logger
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithOpenFunc replaces sql.Open
func WithOpenFunc(fn OpenFunc) Option {
	return func(m *Manager) { m.open = fn }
}

// NewManager creates a manager with cfg
func NewManager(cfg Config, opts ...Option) *Manager {
	m := &Manager{
		cfg:    cfg,
		open:   sql.Open,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Configure replaces the configuration used for the next handle
func (m *Manager) Configure(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db != nil {
		m.logger.Debug("configuration stored, current handle unaffected")
	}
	m.cfg = cfg
}

// Config returns the current configuration
func (m *Manager) Config() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// DB returns the live handle, opening one if none exists or the previous one was closed
func (m *Manager) DB(ctx context.Context) (*sql.DB, error) {
	m.mu.RLock()
	db := m.db
	m.mu.RUnlock()

	if db != nil && alive(ctx, db) {
		return db, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have replaced it while we waited
	if m.db != nil {
		if m.db != db || alive(ctx, m.db) {
			return m.db, nil
		}
		m.logger.Info("database handle closed, reconnecting")
		m.db = nil
	}

	driver, dsn, err := m.cfg.DataSource()
	if err != nil {
		return nil, err
	}

	db, err = m.open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// Keeps ":memory:" databases on a single connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	m.db = db
	m.opened++
	m.logger.Info("database connected", zap.String("driver", driver))
	return db, nil
}

// Close closes the current handle, if any. The next DB call reconnects.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}

// Opened returns how many handles the manager has created
func (m *Manager) Opened() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.opened
}

// alive reports whether db has not been closed. Checking out a pooled
// connection fails fast on a closed handle without a server round trip.
// Other failures are left to the caller's next statement.
func alive(ctx context.Context, db *sql.DB) bool {
	conn, err := db.Conn(ctx)
	if err != nil {
		return !isClosed(err)
	}
	conn.Close()
	return true
}

func isClosed(err error) bool {
	return strings.Contains(err.Error(), "sql: database is closed")
}
