// Package database opens and migrates the SQL store behind the persistence
// collaborators. SQLite is the default local backend; MySQL and PostgreSQL
// are supported through the same dialect abstraction.
package database

import (
	"database/sql"
	"fmt"
	"strings"
)

// DB wraps the connection with dialect-aware query rewriting.
type DB struct {
	*sql.DB
	dialect Dialect
}

// Open connects to the backend named by dbType ("sqlite" by default),
// verifies the connection and applies dialect-specific settings.
func Open(dbType string, cfg ConnConfig) (*DB, error) {
	var dialect Dialect
	switch strings.ToLower(dbType) {
	case "sqlite", "sqlite3", "":
		dialect = sqliteDialect{}
	case "mysql":
		dialect = mysqlDialect{}
	case "postgres", "postgresql":
		dialect = postgresDialect{}
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	db, err := sql.Open(dialect.DriverName(), dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := dialect.Configure(db); err != nil {
		return nil, fmt.Errorf("failed to configure connection: %w", err)
	}
	return &DB{DB: db, dialect: dialect}, nil
}

// Dialect returns the active dialect.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// Query executes a query with automatic placeholder rewriting.
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.DB.Query(db.dialect.Rewrite(query), args...)
}

// QueryRow executes a single-row query with placeholder rewriting.
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRow(db.dialect.Rewrite(query), args...)
}

// Exec executes a statement with placeholder rewriting.
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.DB.Exec(db.dialect.Rewrite(query), args...)
}
