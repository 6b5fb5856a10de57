package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/wonny/scorecard/pkg/logger"
)

//go:embed sql/*.sql
var files embed.FS

// Runner applies the embedded schema migrations
type Runner struct {
	dsn    string
	logger *logger.Logger
}

// NewRunner creates a migration runner for a postgres:// URL
func NewRunner(databaseURL string, log *logger.Logger) *Runner {
	return &Runner{
		dsn:    DriverURL(databaseURL),
		logger: log.WithComponent("migrations"),
	}
}

// DriverURL rewrites a postgres URL to the pgx/v5 driver scheme
func DriverURL(databaseURL string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}

// Source returns the embedded migration source
func Source() (source.Driver, error) {
	d, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	return d, nil
}

// Up applies all pending migrations
func (r *Runner) Up() error {
	return r.run("up", func(m *migrate.Migrate) error { return m.Up() })
}

// Down reverts the last migration
func (r *Runner) Down() error {
	return r.run("down", func(m *migrate.Migrate) error { return m.Steps(-1) })
}

// Version reports the current schema version
func (r *Runner) Version() (uint, bool, error) {
	m, err := r.open()
	if err != nil {
		return 0, false, err
	}
	defer r.close(m)

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (r *Runner) run(direction string, fn func(m *migrate.Migrate) error) error {
	m, err := r.open()
	if err != nil {
		return err
	}
	defer r.close(m)

	err = fn(m)
	if errors.Is(err, migrate.ErrNoChange) {
		r.logger.WithField("direction", direction).Info("No migrations to apply")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}

	r.logger.WithField("direction", direction).Info("Migrations applied")
	return nil
}

func (r *Runner) open() (*migrate.Migrate, error) {
	src, err := Source()
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, r.dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

func (r *Runner) close(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		r.logger.WithError(srcErr).Warn("Migration source error on close")
	}
	if dbErr != nil {
		r.logger.WithError(dbErr).Warn("Migration database error on close")
	}
}
