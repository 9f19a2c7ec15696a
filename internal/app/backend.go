// Package app assembles a repository stack from configuration.
package app

import (
	"context"
	"fmt"

	"clientrepo/internal/config"
	"clientrepo/internal/dbconn"
	"clientrepo/internal/repository"
	"clientrepo/internal/repository/dbadapter"
	"clientrepo/internal/repository/file"
	"clientrepo/internal/repository/observable"
	"clientrepo/internal/repository/sqlstore"

	"go.uber.org/zap"
)

// Backend is an opened repository stack. Repo notifies observers of every
// operation that reaches the storage layer.
type Backend struct {
	Repo *observable.Notifier

	// FilePath is set for file backends, which can be watched
	FilePath string

	db *dbconn.Manager
}

// Close releases the database handle, if any
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// DatabaseConfig converts the database section for the given backend
func DatabaseConfig(cfg *config.Config) dbconn.Config {
	if cfg.Backend == config.BackendSQLite {
		return dbconn.Config{Driver: dbconn.DriverSQLite, DSN: cfg.Database.DSN, Name: cfg.Database.Path}
	}
	return dbconn.Config{
		Driver:   dbconn.DriverPostgres,
		DSN:      cfg.Database.DSN,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Name:     cfg.Database.Name,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
	}
}

// Open builds the repository named by cfg.Backend and wraps it in a
// Notifier with a log observer attached. SQL backends get their table
// created when missing.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	b := &Backend{}
	var inner repository.Repository

	switch cfg.Backend {
	case config.BackendJSON:
		inner = file.NewJSON(cfg.Files.JSON, file.WithLogger(logger))
		b.FilePath = cfg.Files.JSON
	case config.BackendYAML:
		inner = file.NewYAML(cfg.Files.YAML, file.WithLogger(logger))
		b.FilePath = cfg.Files.YAML
	case config.BackendPostgres, config.BackendSQLite:
		dbcfg := DatabaseConfig(cfg)
		driver, _, err := dbcfg.DataSource()
		if err != nil {
			return nil, err
		}
		dialect, err := sqlstore.DialectFor(driver)
		if err != nil {
			return nil, err
		}

		b.db = dbconn.NewManager(dbcfg, dbconn.WithLogger(logger))
		store := sqlstore.New(b.db, dialect, logger)
		if err := store.EnsureSchema(ctx); err != nil {
			b.db.Close()
			return nil, err
		}
		inner = dbadapter.New(store)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}

	b.Repo = observable.New(inner, logger)
	b.Repo.Subscribe(observable.LogObserver(logger))

	logger.Info("repository opened", zap.String("backend", cfg.Backend))
	return b, nil
}
