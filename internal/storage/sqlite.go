package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a page does not exist.
var ErrNotFound = errors.New("not found")

// Driver names a supported SQL backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// DB wraps a database/sql connection together with its dialect.
type DB struct {
	conn   *sql.DB
	driver Driver
}

// Open connects to the database and applies migrations. For sqlite, dsn is
// the database file path; its directory is created if missing.
func Open(driver Driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite:
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, fmt.Errorf("create db directory: %w", err)
			}
		}
		dsn += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.ClientFoundRows = true
		dsn = cfg.FormatDSN()
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", driver)
	}

	conn, err := sql.Open(string(driver), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite allows one writer; a single connection avoids SQLITE_BUSY
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	db := &DB{conn: conn, driver: driver}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Driver returns the backend in use.
func (db *DB) Driver() Driver {
	return db.driver
}

// rebind rewrites ? placeholders to $n for Postgres.
func (db *DB) rebind(query string) string {
	if db.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
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

func (db *DB) migrate() error {
	var migrations []string
	switch db.driver {
	case DriverSQLite:
		migrations = sqliteMigrations
	case DriverPostgres:
		migrations = postgresMigrations
	case DriverMySQL:
		migrations = mysqlMigrations
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			// ALTER TABLE fails when the column already exists
			if strings.Contains(m, "ADD COLUMN") && isDuplicateColumn(err) {
				continue
			}
			return fmt.Errorf("migration failed: %s: %w", m[:min(len(m), 40)], err)
		}
	}
	return nil
}

func isDuplicateColumn(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column") || strings.Contains(msg, "already exists")
}

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS pages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS components (
		page_id TEXT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		parent_id TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		props_json TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (page_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_components_page ON components(page_id)`,
	`CREATE TABLE IF NOT EXISTS selections (
		page_id TEXT PRIMARY KEY REFERENCES pages(id) ON DELETE CASCADE,
		selected_id TEXT NOT NULL DEFAULT ''
	)`,
	// Slug column added after the first release
	`ALTER TABLE pages ADD COLUMN slug TEXT NOT NULL DEFAULT ''`,
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS pages (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS components (
		page_id TEXT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		parent_id TEXT NOT NULL DEFAULT '',
		type TEXT NOT NULL,
		sort_order INTEGER NOT NULL DEFAULT 0,
		props_json TEXT NOT NULL DEFAULT '{}',
		PRIMARY KEY (page_id, id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_components_page ON components(page_id)`,
	`CREATE TABLE IF NOT EXISTS selections (
		page_id TEXT PRIMARY KEY REFERENCES pages(id) ON DELETE CASCADE,
		selected_id TEXT NOT NULL DEFAULT ''
	)`,
	`ALTER TABLE pages ADD COLUMN IF NOT EXISTS slug TEXT NOT NULL DEFAULT ''`,
}

var mysqlMigrations = []string{
	`CREATE TABLE IF NOT EXISTS pages (
		id VARCHAR(64) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS components (
		page_id VARCHAR(64) NOT NULL,
		id VARCHAR(64) NOT NULL,
		parent_id VARCHAR(64) NOT NULL DEFAULT '',
		type VARCHAR(64) NOT NULL,
		sort_order INT NOT NULL DEFAULT 0,
		props_json MEDIUMTEXT NOT NULL,
		PRIMARY KEY (page_id, id),
		FOREIGN KEY (page_id) REFERENCES pages(id) ON DELETE CASCADE
	) CHARACTER SET utf8mb4`,
	`CREATE TABLE IF NOT EXISTS selections (
		page_id VARCHAR(64) PRIMARY KEY,
		selected_id VARCHAR(64) NOT NULL DEFAULT '',
		FOREIGN KEY (page_id) REFERENCES pages(id) ON DELETE CASCADE
	) CHARACTER SET utf8mb4`,
	`ALTER TABLE pages ADD COLUMN slug VARCHAR(255) NOT NULL DEFAULT ''`,
}
