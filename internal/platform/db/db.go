package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver names registered by the imported database/sql drivers.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// Open connects to Postgres (databaseURL) through the pgx stdlib driver.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open(DriverPostgres, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("openDB: open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify postgres connection: %w", err)
	}

	return db, nil
}

// OpenSQLite opens a SQLite database file. ":memory:" is pinned to a single
// connection so every query sees the same database.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" && !strings.Contains(path, "?") {
		// Concurrent batch plans write the plan cache from several connections.
		dsn = path + "?_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", path, err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", path, err)
	}

	return db, nil
}

// Dialect adapts queries written with "?" placeholders to a driver.
type Dialect string

const (
	Postgres Dialect = DriverPostgres
	SQLite   Dialect = DriverSQLite
)

// DialectFor maps a driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverPostgres, "postgres":
		return Postgres, nil
	case DriverSQLite:
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// Rebind rewrites "?" placeholders to "$1", "$2", ... for Postgres.
// Queries must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
