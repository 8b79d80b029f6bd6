package migrate

import (
	"database/sql"
	"errors"
	"io/fs"

	embedded "github.com/goserg/rolegate"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

func UpAuthSqlite(db *sql.DB) error {
	databaseDriver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}
	return up(embedded.SqliteMigrations, "migrations/sqlite", "sqlite3", databaseDriver)
}

func UpAuthPostgres(db *sql.DB) error {
	databaseDriver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return err
	}
	return up(embedded.PostgresMigrations, "migrations/postgres", "pgx5", databaseDriver)
}

func up(fsys fs.FS, path string, dbName string, databaseDriver database.Driver) error {
	sourceDriver, err := iofs.New(fsys, path)
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, dbName, databaseDriver)
	if err != nil {
		return err
	}
	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
