// Package sqlite is the relational store of the portal.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	dberrors "hspace-portal/db/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Database struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database file at path with foreign keys enforced.
func Open(path string) (*Database, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	database, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers; one connection avoids "database is locked".
	database.SetMaxOpenConns(1)

	return &Database{db: database}, nil
}

func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate applies every embedded migration.
func (d *Database) Migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	dbDriver, err := sqlite3.WithInstance(d.db.DB, &sqlite3.Config{})
	if err != nil {
		return err
	}

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "hspace", dbDriver)
	if err != nil {
		return err
	}

	err = migrator.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}

// getOne runs a single-row query and maps sql.ErrNoRows to EntryNotFound.
func (d *Database) getOne(ctx context.Context, dest interface{}, what string, query string, args ...interface{}) error {
	err := d.db.GetContext(ctx, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return dberrors.NewEntryNotFound(fmt.Sprintf("no entries for %s", what))
	}
	return err
}

// insert runs a named INSERT and returns the new row id.
func (d *Database) insert(ctx context.Context, query string, arg interface{}) (int64, error) {
	res, err := d.db.NamedExecContext(ctx, query, arg)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
