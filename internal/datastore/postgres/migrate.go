package postgres

import (
	"database/sql"
	"os"
	"path/filepath"

	"github.com/ghaniswara/dharmasaathi/pkg/path"
	"github.com/golang-migrate/migrate/v4"
	migratePostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
)

// RunMigrations applies every pending migration in dir. A relative dir is
// resolved by walking up from the working directory. Up to date is not an error.
func RunMigrations(db *sql.DB, dir string) error {
	migrationPath, err := resolveMigrationsDir(dir)
	if err != nil {
		return err
	}

	driver, err := migratePostgres.WithInstance(db, &migratePostgres.Config{})
	if err != nil {
		return errors.Wrap(err, "migrate driver")
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationPath, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, "migrate init")
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migrate up")
	}
	return nil
}

func resolveMigrationsDir(dir string) (string, error) {
	if filepath.IsAbs(dir) {
		return dir, nil
	}

	basePath, err := os.Getwd()
	if err != nil {
		return "", err
	}

	root, err := path.FindRoot(basePath, dir, true)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, dir), nil
}
