package storage

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies all pending schema migrations to the SQLite database at
// dbPath.
func Migrate(dbPath string) error {
	dir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("access migrations: %w", err)
	}
	src, err := iofs.New(dir, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	p := filepath.ToSlash(dbPath)
	if filepath.IsAbs(dbPath) && p[0] != '/' {
		p = "/" + p
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+p)
	if err != nil {
		return fmt.Errorf("create migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
