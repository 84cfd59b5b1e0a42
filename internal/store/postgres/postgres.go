package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/roach88/stockroom/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	driverName          = "pgx"
	defaultMaxOpenConns = 10
	defaultMaxIdleConns = 5
)

// Store is the PostgreSQL-backed store.Store.
type Store struct {
	db *sqlx.DB
}

var _ store.Store = (*Store)(nil)

// Open migrates the database at dsn to the latest schema version and
// returns a store backed by a connection pool.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if err := Migrate(dsn, logger); err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", classify(err))
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)

	return &Store{db: db}, nil
}

// Migrate applies every pending embedded migration. It uses its own
// connection, closed before returning.
func Migrate(dsn string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("migrate: open: %w", classify(err))
	}
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("migrate: driver: %w", classify(err))
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrate: source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return fmt.Errorf("migrate: init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("no new migrations")
			return nil
		}
		var dirtyErr migrate.ErrDirty
		if errors.As(err, &dirtyErr) {
			return fmt.Errorf("migrate: dirty database version %d", dirtyErr.Version)
		}
		return fmt.Errorf("migrate: up: %w", classify(err))
	}

	version, _, err := m.Version()
	if err == nil {
		logger.Info("schema migrated", "version", version)
	}
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return classify(err)
	}
	return nil
}

// DB returns the underlying pool.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// InTx runs fn inside one READ COMMITTED transaction.
func (s *Store) InTx(ctx context.Context, fn func(store.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", classify(err))
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&unit{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", classify(err))
	}
	return nil
}

type unit struct {
	tx *sqlx.Tx
}

func (u *unit) Products() store.ProductRepository   { return products{u.tx} }
func (u *unit) Orders() store.OrderRepository       { return orders{u.tx} }
func (u *unit) Positions() store.PositionRepository { return positions{u.tx} }
func (u *unit) Calendar() store.CalendarRepository  { return calendar{u.tx} }
