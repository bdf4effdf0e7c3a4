package sqlitemigrate

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	sqlDB, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return sqlDB
}

func TestApplyMigrationsRunsOnce(t *testing.T) {
	sqlDB := openTestDB(t)
	migrationFS := fstest.MapFS{
		"0001_create.sql": &fstest.MapFile{Data: []byte(`
-- +migrate Up
CREATE TABLE things (id TEXT PRIMARY KEY);
-- +migrate Down
DROP TABLE things;
`)},
	}

	if err := ApplyMigrations(sqlDB, migrationFS); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	// Applying again must be a no-op.
	if err := ApplyMigrations(sqlDB, migrationFS); err != nil {
		t.Fatalf("reapply migrations: %v", err)
	}

	var count int
	if err := sqlDB.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count applied migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 applied migration, got %d", count)
	}

	if _, err := sqlDB.Exec("INSERT INTO things (id) VALUES ('a')"); err != nil {
		t.Fatalf("expected migrated table to exist: %v", err)
	}
}

func TestApplyMigrationsLexicalOrder(t *testing.T) {
	sqlDB := openTestDB(t)
	migrationFS := fstest.MapFS{
		"0002_add_column.sql": &fstest.MapFile{Data: []byte(`
-- +migrate Up
ALTER TABLE things ADD COLUMN label TEXT;
`)},
		"0001_create.sql": &fstest.MapFile{Data: []byte(`
-- +migrate Up
CREATE TABLE things (id TEXT PRIMARY KEY);
`)},
	}

	if err := ApplyMigrations(sqlDB, migrationFS); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if _, err := sqlDB.Exec("INSERT INTO things (id, label) VALUES ('a', 'b')"); err != nil {
		t.Fatalf("expected both migrations applied: %v", err)
	}
}

func TestExtractUpMigration(t *testing.T) {
	content := `
-- +migrate Up
CREATE TABLE a (id TEXT);
-- +migrate Down
DROP TABLE a;
`
	up := ExtractUpMigration(content)
	if up == content {
		t.Fatal("expected up section extraction")
	}
	if want := "CREATE TABLE a"; !strings.Contains(up, want) {
		t.Fatalf("expected %q in up section, got %q", want, up)
	}
	if strings.Contains(up, "DROP TABLE") {
		t.Fatalf("down section leaked into up: %q", up)
	}
}

func TestExtractUpMigrationWithoutMarkers(t *testing.T) {
	content := "CREATE TABLE b (id TEXT);"
	if got := ExtractUpMigration(content); got != content {
		t.Fatalf("expected full content without markers, got %q", got)
	}
}
