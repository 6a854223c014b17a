package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect abstracts the differences between the supported SQL backends.
// Repositories write queries with ? placeholders; the dialect rewrites them
// where needed.
type Dialect interface {
	// Name is the config value selecting this dialect.
	Name() string

	// DriverName is the registered driver for sql.Open.
	DriverName() string

	// DSN builds the data source name from the connection settings.
	DSN(cfg ConnConfig) string

	// Rewrite converts ? placeholders to the backend's syntax.
	Rewrite(query string) string

	// Configure applies backend-specific connection settings.
	Configure(db *sql.DB) error

	// MigrationsSubdir is the per-backend migrations directory.
	MigrationsSubdir() string

	// MigrationsTableDDL creates the migrations tracking table.
	MigrationsTableDDL() string
}

// ConnConfig holds connection settings: Path for SQLite, URL for the
// server-based backends.
type ConnConfig struct {
	Path string
	URL  string
}

func configurePool(db *sql.DB) {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
}

var placeholderPattern = regexp.MustCompile(`\?`)

// numberedPlaceholders converts ? placeholders to $1, $2, ...
func numberedPlaceholders(query string) string {
	n := 0
	return placeholderPattern.ReplaceAllStringFunc(query, func(string) string {
		n++
		return "$" + strconv.Itoa(n)
	})
}

// sqliteDialect is the default, file-based backend.
type sqliteDialect struct{}

func (sqliteDialect) Name() string              { return "sqlite" }
func (sqliteDialect) DriverName() string        { return "sqlite3" }
func (sqliteDialect) DSN(cfg ConnConfig) string { return cfg.Path }
func (sqliteDialect) Rewrite(q string) string   { return q }
func (sqliteDialect) MigrationsSubdir() string  { return "sqlite" }

func (sqliteDialect) Configure(db *sql.DB) error {
	configurePool(db)
	// WAL for reader concurrency; the engine itself is single-writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return err
	}
	return nil
}

func (sqliteDialect) MigrationsTableDDL() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT UNIQUE NOT NULL,
			executed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
	`
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string              { return "mysql" }
func (mysqlDialect) DriverName() string        { return "mysql" }
func (mysqlDialect) DSN(cfg ConnConfig) string { return cfg.URL }
func (mysqlDialect) Rewrite(q string) string   { return q }
func (mysqlDialect) MigrationsSubdir() string  { return "mysql" }

func (mysqlDialect) Configure(db *sql.DB) error {
	configurePool(db)
	_, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1;")
	return err
}

func (mysqlDialect) MigrationsTableDDL() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}

type postgresDialect struct{}

func (postgresDialect) Name() string              { return "postgres" }
func (postgresDialect) DriverName() string        { return "postgres" }
func (postgresDialect) DSN(cfg ConnConfig) string { return cfg.URL }
func (postgresDialect) Rewrite(q string) string   { return numberedPlaceholders(q) }
func (postgresDialect) MigrationsSubdir() string  { return "postgres" }

func (postgresDialect) Configure(db *sql.DB) error {
	configurePool(db)
	return nil
}

func (postgresDialect) MigrationsTableDDL() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
}
