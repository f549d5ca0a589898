package postgres

import (
	"strings"
	"testing"
	"testing/fstest"
)

func TestReadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_add_index.sql": {Data: []byte("CREATE INDEX x ON t (a);")},
		"0001_init.sql":      {Data: []byte("CREATE TABLE t (a INT);")},
		"README.md":          {Data: []byte("notes")},
		"draft.sql":          {Data: []byte("SELECT 1;")},
	}

	migrations, err := readMigrations(fsys)
	if err != nil {
		t.Fatalf("readMigrations() failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("readMigrations() returned %d migrations, want 2", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "init" {
		t.Errorf("first migration = %d %q", migrations[0].Version, migrations[0].Name)
	}
	if migrations[1].Version != 2 || migrations[1].Name != "add_index" {
		t.Errorf("second migration = %d %q", migrations[1].Version, migrations[1].Name)
	}
	if len(migrations[0].Checksum) != 64 {
		t.Errorf("checksum %q is not a hex sha256", migrations[0].Checksum)
	}
	if migrations[0].Checksum == migrations[1].Checksum {
		t.Error("different files produced the same checksum")
	}
}

func TestReadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"0001_init.sql":  {Data: []byte("SELECT 1;")},
		"0001_again.sql": {Data: []byte("SELECT 2;")},
	}
	if _, err := readMigrations(fsys); err == nil {
		t.Fatal("readMigrations() should reject duplicate versions")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	migrations, err := Migrations()
	if err != nil {
		t.Fatalf("Migrations() failed: %v", err)
	}
	if len(migrations) == 0 || migrations[0].Version != 1 {
		t.Fatalf("expected 0001 as the first embedded migration, got %+v", migrations)
	}

	schema := migrations[0].SQL
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS users",
		"CREATE TABLE IF NOT EXISTS accounts",
		"CREATE TABLE IF NOT EXISTS transactions",
		"users_email_key",
		"CHECK (balance >= 0)",
		"CHECK (amount > 0)",
		"(account_id, created_at DESC, id DESC)",
	} {
		if !strings.Contains(schema, want) {
			t.Errorf("initial migration is missing %q", want)
		}
	}
}
