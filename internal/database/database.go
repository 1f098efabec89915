package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver selects the SQL backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) sqlName() (string, error) {
	switch d {
	case DriverPostgres:
		return "pgx", nil
	case DriverSQLite:
		return "sqlite", nil
	}

	return "", fmt.Errorf("unknown database driver %q", d)
}

// DB wraps *sql.DB so that stores can write PostgreSQL-style queries ($1, $2)
// and run them unchanged on SQLite.
type DB struct {
	*sql.DB
	driver Driver
}

func New(driver Driver, dsn string) (*DB, error) {
	name, err := driver.sqlName()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	switch driver {
	case DriverPostgres:
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	case DriverSQLite:
		// SQLite allows a single writer; one connection serialises writes
		// instead of failing with SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	return &DB{DB: db, driver: driver}, nil
}

func (db *DB) Driver() Driver {
	return db.driver
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.DB.ExecContext(ctx, rebind(db.driver, query), args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.DB.QueryContext(ctx, rebind(db.driver, query), args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.DB.QueryRowContext(ctx, rebind(db.driver, query), args...)
}

func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}

	return &Tx{Tx: tx, driver: db.driver}, nil
}

// Date converts a calendar date into the argument the driver expects.
func (db *DB) Date(t time.Time) any {
	return dateArg(db.driver, t)
}

// Time converts a timestamp into the argument the driver expects.
func (db *DB) Time(t time.Time) any {
	return timeArg(db.driver, t)
}

// Tx is the transactional counterpart of DB.
type Tx struct {
	*sql.Tx
	driver Driver
}

func (tx *Tx) Driver() Driver {
	return tx.driver
}

func (tx *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return tx.Tx.ExecContext(ctx, rebind(tx.driver, query), args...)
}

func (tx *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return tx.Tx.QueryContext(ctx, rebind(tx.driver, query), args...)
}

func (tx *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return tx.Tx.QueryRowContext(ctx, rebind(tx.driver, query), args...)
}

func (tx *Tx) Date(t time.Time) any {
	return dateArg(tx.driver, t)
}

func (tx *Tx) Time(t time.Time) any {
	return timeArg(tx.driver, t)
}

var placeholder = regexp.MustCompile(`\$(\d+)`)

// rebind turns $N placeholders into SQLite's numbered ?N form.
func rebind(driver Driver, query string) string {
	if driver != DriverSQLite {
		return query
	}

	return placeholder.ReplaceAllString(query, "?$1")
}

// SQLite stores dates and timestamps as text. The fixed-width layout keeps
// lexical order equal to chronological order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

func dateArg(driver Driver, t time.Time) any {
	if driver == DriverSQLite {
		return t.Format(time.DateOnly)
	}

	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func timeArg(driver Driver, t time.Time) any {
	if driver == DriverSQLite {
		return t.UTC().Format(sqliteTimeLayout)
	}

	return t.UTC()
}

// TimeValue scans DATE and TIMESTAMP columns from either driver: pgx yields
// time.Time while SQLite yields text.
type TimeValue struct {
	Time *time.Time
}

var timeLayouts = []string{
	sqliteTimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func (v TimeValue) Scan(src any) error {
	switch x := src.(type) {
	case nil:
		*v.Time = time.Time{}
		return nil
	case time.Time:
		*v.Time = x.UTC()
		return nil
	case string:
		return v.parse(x)
	case []byte:
		return v.parse(string(x))
	}

	return fmt.Errorf("unsupported time value of type %T", src)
}

func (v TimeValue) parse(s string) error {
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			*v.Time = t.UTC()
			return nil
		}
	}

	return fmt.Errorf("unrecognised time value %q", s)
}
