package database

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Direction selects which way migrations run.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Migrator applies versioned SQL migrations from an fs.FS onto a pool.
type Migrator struct {
	m      *migrate.Migrate
	logger *slog.Logger
}

// NewMigrator reads migrations from dir within fsys. Files follow the
// golang-migrate naming scheme (0001_name.up.sql / 0001_name.down.sql).
func NewMigrator(conn *sql.DB, fsys fs.FS, dir string, logger *slog.Logger) (*Migrator, error) {
	source, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	driver, err := pgxmigrate.WithInstance(conn, &pgxmigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return nil, fmt.Errorf("migration init: %w", err)
	}

	return &Migrator{
		m:      m,
		logger: logger.With("system", "migrate"),
	}, nil
}

// Run applies every pending migration in the given direction. An already
// current schema is not an error.
func (mg *Migrator) Run(dir Direction) error {
	var err error
	switch dir {
	case Up:
		err = mg.m.Up()
	case Down:
		err = mg.m.Down()
	default:
		return fmt.Errorf("unknown migration direction: %s", dir)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		mg.logger.Info("schema up to date", "direction", dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", dir, err)
	}

	mg.logger.Info("migrations applied", "direction", dir)
	return nil
}

// Steps applies n migrations; negative n rolls back.
func (mg *Migrator) Steps(n int) error {
	if err := mg.m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate steps %d: %w", n, err)
	}
	return nil
}

// Version returns the current schema version and dirty flag. A fresh
// database reports version 0.
func (mg *Migrator) Version() (uint, bool, error) {
	v, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}
