// Package sqlstore implements repository.Repository with one SQL statement
// per operation against a "clients" table.
//
// The same queries serve PostgreSQL (pgx) and SQLite (modernc). Dialect
// handles placeholder style and the CREATE TABLE statement.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"clientrepo/internal/domain"
	"clientrepo/internal/repository"

	"go.uber.org/zap"
)

// Connector supplies the handle used for each statement.
// dbconn.Manager implements it.
type Connector interface {
	DB(ctx context.Context) (*sql.DB, error)
}

type fixed struct {
	db *sql.DB
}

func (f fixed) DB(context.Context) (*sql.DB, error) {
	return f.db, nil
}

// Fixed returns a Connector that always yields db
func Fixed(db *sql.DB) Connector {
	return fixed{db: db}
}

// Store is a query-backed client repository
type Store struct {
	conn    Connector
	dialect Dialect
	logger  *zap.Logger
}

var _ repository.Repository = (*Store)(nil)

// New creates a store. The logger may be nil.
func New(conn Connector, dialect Dialect, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{conn: conn, dialect: dialect, logger: logger}
}

func (s *Store) db(ctx context.Context) (*sql.DB, error) {
	db, err := s.conn.DB(ctx)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return db, nil
}

// Dialect returns the store's SQL dialect
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// EnsureSchema creates the clients table if it does not exist.
// Existing tables are never altered.
func (s *Store) EnsureSchema(ctx context.Context) error {
	db, err := s.db(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, s.dialect.schema); err != nil {
		return fmt.Errorf("failed to create clients table: %w", err)
	}
	return nil
}

// ReadAll returns every client ordered by id
func (s *Store) ReadAll(ctx context.Context) ([]domain.Client, error) {
	return s.query(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY id`)
}

// GetByID returns the client with the given ID, or nil if absent.
// Token IDs never exist in the table.
func (s *Store) GetByID(ctx context.Context, id domain.ID) (*domain.Client, error) {
	n, ok := id.Int()
	if !ok {
		return nil, nil
	}

	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	var row clientRow
	err = db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT `+clientColumns+` FROM clients WHERE id = ?`), n,
	).Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	c := row.toDomain()
	return &c, nil
}

// GetPage returns one page ordered by id
func (s *Store) GetPage(ctx context.Context, page, size int) ([]domain.ShortInfo, error) {
	offset, ok := repository.PageOffset(page, size)
	if !ok {
		return []domain.ShortInfo{}, nil
	}

	clients, err := s.query(ctx,
		s.dialect.rebind(`SELECT `+clientColumns+` FROM clients ORDER BY id LIMIT ? OFFSET ?`),
		size, offset,
	)
	if err != nil {
		return nil, err
	}

	out := make([]domain.ShortInfo, 0, len(clients))
	for _, c := range clients {
		out = append(out, c.Short())
	}
	return out, nil
}

// Count returns the number of rows
func (s *Store) Count(ctx context.Context) (int, error) {
	db, err := s.db(ctx)
	if err != nil {
		return 0, err
	}

	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// Add inserts the client and returns the row as stored, with the
// database-assigned id and any rounding the column types applied
func (s *Store) Add(ctx context.Context, c domain.Client) (*domain.Client, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	var row clientRow
	err = db.QueryRowContext(ctx, s.dialect.rebind(`
		INSERT INTO clients (surname, firstname, fathers_name, birth_date, phone_number, pasport, email, balance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+clientColumns), clientWriteArgs(c)...).Scan(row.scanArgs()...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	created := row.toDomain()
	s.logger.Debug("client inserted", zap.Int64("id", row.ID))
	return &created, nil
}

// ReplaceByID overwrites every column of the row with the given id.
// It reports false when no row matched.
func (s *Store) ReplaceByID(ctx context.Context, id domain.ID, c domain.Client) (bool, error) {
	n, ok := id.Int()
	if !ok {
		return false, nil
	}

	db, err := s.db(ctx)
	if err != nil {
		return false, err
	}

	args := append(clientWriteArgs(c), n)
	res, err := db.ExecContext(ctx, s.dialect.rebind(`
		UPDATE clients
		SET surname = ?, firstname = ?, fathers_name = ?, birth_date = ?,
			phone_number = ?, pasport = ?, email = ?, balance = ?
		WHERE id = ?
	`), args...)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

// DeleteByID removes the row with the given id.
// It reports false when no row matched.
func (s *Store) DeleteByID(ctx context.Context, id domain.ID) (bool, error) {
	n, ok := id.Int()
	if !ok {
		return false, nil
	}

	db, err := s.db(ctx)
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx, s.dialect.rebind(`DELETE FROM clients WHERE id = ?`), n)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return affected(res)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]domain.Client, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	clients := make([]domain.Client, 0)
	for rows.Next() {
		var row clientRow
		if err := rows.Scan(row.scanArgs()...); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}
	return clients, nil
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
