package postgres

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // register postgres driver
	_ "github.com/golang-migrate/migrate/v4/source/file"       // register file source driver
)

// MigrationState is the schema version left by a migration run.
type MigrationState struct {
	// Version is 0 when no migration has ever been applied.
	Version uint
	// Changed is false when the schema was already current.
	Changed bool
}

// ErrDirtySchema is returned when a previous migration failed half way.
// The schema must be repaired by hand before the service can start.
var ErrDirtySchema = errors.New("postgres: schema is dirty")

// SourceURL turns a migrations location into a golang-migrate source URL.
// Plain paths are resolved to absolute file:// URLs; URLs pass through.
func SourceURL(dir string) (string, error) {
	if strings.Contains(dir, "://") {
		return dir, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("postgres: resolve migrations dir %s: %w", dir, err)
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// RunMigrations applies all pending migrations from dir and reports the
// resulting schema version. An already current schema is not an error.
func RunMigrations(dsn, dir string) (MigrationState, error) {
	m, err := newMigrator(dsn, dir)
	if err != nil {
		return MigrationState{}, err
	}
	defer m.Close()

	before, err := version(m)
	if err != nil {
		return MigrationState{}, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return MigrationState{}, fmt.Errorf("postgres: run migrations up: %w", err)
	}

	after, err := version(m)
	if err != nil {
		return MigrationState{}, err
	}
	return MigrationState{Version: after, Changed: after != before}, nil
}

// RunMigrationsDown rolls back every migration in dir.
func RunMigrationsDown(dsn, dir string) error {
	m, err := newMigrator(dsn, dir)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: run migrations down: %w", err)
	}
	return nil
}

func newMigrator(dsn, dir string) (*migrate.Migrate, error) {
	source, err := SourceURL(dir)
	if err != nil {
		return nil, err
	}
	m, err := migrate.New(source, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: create migrator: %w", err)
	}
	return m, nil
}

func version(m *migrate.Migrate) (uint, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("postgres: read schema version: %w", err)
	}
	if dirty {
		return v, fmt.Errorf("%w at version %d", ErrDirtySchema, v)
	}
	return v, nil
}
