// Package migration applies the SQL schema in migrations/ with golang-migrate.
package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/phonestore/backend/migrations"
	"go.uber.org/zap"
)

// ErrDirty means an earlier migration stopped halfway.
var ErrDirty = errors.New("database schema is dirty; fix it and run 'migrate force <version>'")

// Migrator moves the pricing schema between versions.
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New reads migrations from dir.
func New(db *sql.DB, dir string, log *zap.Logger) (*Migrator, error) {
	return open(db, log, func(driver database.Driver) (*migrate.Migrate, error) {
		return migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	})
}

// NewEmbedded reads the migrations compiled into the binary.
func NewEmbedded(db *sql.DB, log *zap.Logger) (*Migrator, error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	return open(db, log, func(driver database.Driver) (*migrate.Migrate, error) {
		return migrate.NewWithInstance("iofs", src, "postgres", driver)
	})
}

func open(db *sql.DB, log *zap.Logger, build func(database.Driver) (*migrate.Migrate, error)) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	m, err := build(driver)
	if err != nil {
		return nil, fmt.Errorf("init migrate: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Migrator{m: m, log: log}, nil
}

// apply runs step and logs where the schema ended up. ErrNoChange is success.
func (mg *Migrator) apply(action string, step func() error) error {
	switch err := step(); {
	case errors.Is(err, migrate.ErrNoChange):
		mg.log.Info("Schema already up to date", zap.String("action", action))
		return nil
	case err != nil:
		return fmt.Errorf("migrate %s: %w", action, err)
	}
	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	mg.log.Info("Migration finished",
		zap.String("action", action),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}

// Up applies every pending migration. A dirty schema is refused.
func (mg *Migrator) Up() error {
	_, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	if dirty {
		return ErrDirty
	}
	return mg.apply("up", mg.m.Up)
}

func (mg *Migrator) Down() error {
	return mg.apply("down", mg.m.Down)
}

// Steps applies n migrations, or rolls back -n when n is negative.
func (mg *Migrator) Steps(n int) error {
	return mg.apply(fmt.Sprintf("steps %d", n), func() error { return mg.m.Steps(n) })
}

func (mg *Migrator) GoTo(version uint) error {
	return mg.apply(fmt.Sprintf("goto %d", version), func() error { return mg.m.Migrate(version) })
}

// Version reports the applied version, zero before the first migration.
func (mg *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = mg.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, false, nil
	case err != nil:
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Force records version as applied without running it.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing schema version", zap.Int("version", version))
	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and the database driver, which closes db.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
