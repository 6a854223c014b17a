package database

import (
	"strings"
	"testing"
)

func TestNumberedPlaceholders(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no placeholders",
			query: "SELECT id FROM cards",
			want:  "SELECT id FROM cards",
		},
		{
			name:  "single placeholder",
			query: "SELECT id FROM cards WHERE deck_id = ?",
			want:  "SELECT id FROM cards WHERE deck_id = $1",
		},
		{
			name:  "multiple placeholders",
			query: "INSERT INTO cards (id, deck_id, question) VALUES (?, ?, ?)",
			want:  "INSERT INTO cards (id, deck_id, question) VALUES ($1, $2, $3)",
		},
		{
			name:  "update with where clause",
			query: "UPDATE cards SET ease_factor = ?, interval_days = ? WHERE id = ?",
			want:  "UPDATE cards SET ease_factor = $1, interval_days = $2 WHERE id = $3",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := numberedPlaceholders(tt.query); got != tt.want {
				t.Errorf("numberedPlaceholders(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestDialectRewrite(t *testing.T) {
	query := "SELECT * FROM cards WHERE deck_id = ? AND position > ?"

	if got := (sqliteDialect{}).Rewrite(query); got != query {
		t.Errorf("sqlite rewrite changed the query: %q", got)
	}
	if got := (mysqlDialect{}).Rewrite(query); got != query {
		t.Errorf("mysql rewrite changed the query: %q", got)
	}
	got := (postgresDialect{}).Rewrite(query)
	if !strings.Contains(got, "$1") || !strings.Contains(got, "$2") {
		t.Errorf("postgres rewrite = %q, want numbered placeholders", got)
	}
}

func TestDialectIdentity(t *testing.T) {
	tests := []struct {
		dialect Dialect
		name    string
		driver  string
		subdir  string
	}{
		{sqliteDialect{}, "sqlite", "sqlite3", "sqlite"},
		{mysqlDialect{}, "mysql", "mysql", "mysql"},
		{postgresDialect{}, "postgres", "postgres", "postgres"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.Name(); got != tt.name {
				t.Errorf("Name() = %q, want %q", got, tt.name)
			}
			if got := tt.dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %q, want %q", got, tt.driver)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.subdir {
				t.Errorf("MigrationsSubdir() = %q, want %q", got, tt.subdir)
			}
			if ddl := tt.dialect.MigrationsTableDDL(); !strings.Contains(ddl, "migrations") {
				t.Errorf("MigrationsTableDDL() missing migrations table: %q", ddl)
			}
		})
	}
}

func TestDialectDSN(t *testing.T) {
	cfg := ConnConfig{Path: "/tmp/mnemo.db", URL: "user:pass@tcp(localhost)/mnemo"}

	if got := (sqliteDialect{}).DSN(cfg); got != cfg.Path {
		t.Errorf("sqlite DSN = %q, want the file path", got)
	}
	if got := (mysqlDialect{}).DSN(cfg); got != cfg.URL {
		t.Errorf("mysql DSN = %q, want the URL", got)
	}
	if got := (postgresDialect{}).DSN(cfg); got != cfg.URL {
		t.Errorf("postgres DSN = %q, want the URL", got)
	}
}

func TestOpenRejectsUnknownBackend(t *testing.T) {
	if _, err := Open("oracle", ConnConfig{}); err == nil {
		t.Error("Open should reject an unsupported database type")
	}
}
