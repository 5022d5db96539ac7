package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mbolis/quick-forms/config"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// DB wraps the connection pool. Queries use $N placeholders, which both
// drivers accept as long as they appear in ascending order.
type DB struct {
	*sql.DB
	Driver string
}

func Open(cfg config.Config) (db *DB, err error) {
	dsn := cfg.DBUrl
	if cfg.DBDriver == "sqlite3" {
		dsn = sqliteDSN(dsn)
	}

	conn, err := sql.Open(cfg.DBDriver, dsn)
	if err != nil {
		return
	}
	db = &DB{DB: conn, Driver: cfg.DBDriver}

	if cfg.DBDriver == "sqlite3" {
		// sqlite serializes writers anyway
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(20)
		db.SetMaxIdleConns(10)
	}

	// db tuning options
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(2 * time.Hour)

	err = migrateDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return
}

// sqliteDSN turns on foreign keys for every pooled connection.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys") || strings.Contains(dsn, "_fk") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_busy_timeout=5000"
}
