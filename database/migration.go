package database

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var dbMigrations embed.FS

func migrateDB(db *DB) error {
	src, err := iofs.New(dbMigrations, "migrations/"+db.Driver)
	if err != nil {
		return err
	}

	var dst migratedb.Driver
	switch db.Driver {
	case "sqlite3":
		dst, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	case "pgx":
		dst, err = pgx.WithInstance(db.DB, &pgx.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", db.Driver)
	}
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithInstance("iofs", src, db.Driver, dst)
	if err != nil {
		return err
	}

	err = migrator.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		// db already up to date
		break
	case err != nil:
		return err
	}
	return nil
}
