package config

import (
	"errors"
	"os"
	"testing"

	"github.com/relloyd/psvexport/rdbms/shared"
)

func TestFile(t *testing.T) {
	dir := t.TempDir()
	f := NewConfigFileWithDir(dir, ConnectionsConfigFileFullName)

	// Test 1 - a missing file has no keys.
	keys, err := f.GetAllKeys()
	if err != nil || len(keys) != 0 {
		t.Fatalf("expected no keys and no error, got %v, %v", keys, err)
	}

	// Test 2 - connections round trip through the file.
	d := shared.ConnectionDetails{Type: "sqlserver", Data: map[string]string{"dsn": "sqlserver://u:p@host:1433?database=db"}}
	if err = f.SetConnection("source", d); err != nil {
		t.Fatalf("unexpected error saving connection: %v", err)
	}
	info, err := os.Stat(f.FullPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("expected file mode 0600, got %v", info.Mode().Perm())
	}
	f2 := NewConfigFileWithDir(dir, ConnectionsConfigFileFullName)
	got, err := f2.LoadConnection("source")
	if err != nil {
		t.Fatalf("unexpected error loading connection: %v", err)
	}
	if got.Type != "sqlserver" || got.LogicalName != "source" || got.Data["dsn"] != d.Data["dsn"] {
		t.Fatalf("unexpected connection: %+v", got)
	}

	// Test 3 - missing keys give KeyNotFoundError.
	_, err = f2.LoadConnection("missing")
	var knf KeyNotFoundError
	if !errors.As(err, &knf) {
		t.Fatalf("expected KeyNotFoundError, got %v", err)
	}

	// Test 4 - delete removes the key and a second delete fails.
	if err = f2.Delete("source"); err != nil {
		t.Fatalf("unexpected error deleting: %v", err)
	}
	if err = f2.Delete("source"); err == nil {
		t.Fatal("expected error deleting missing key")
	}
	if keys, _ = NewConfigFileWithDir(dir, ConnectionsConfigFileFullName).GetAllKeys(); len(keys) != 0 {
		t.Fatalf("expected no keys after delete, got %v", keys)
	}

	// Test 5 - connections without a usable DSN are rejected.
	if err = f.SetConnection("bad", shared.ConnectionDetails{Type: "netezza", Data: map[string]string{"host": "h"}}); err == nil {
		t.Fatal("expected error for connection without dsn")
	}
}

func TestEnvConnections(t *testing.T) {
	// Test 1 - the type comes from the DSN scheme.
	t.Setenv("PX_SOURCE_DSN", "postgresql://u:p@localhost/db")
	d, err := EnvConnections{}.LoadConnection("source")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Type != "postgres" || d.Data["dsn"] != "postgresql://u:p@localhost/db" {
		t.Fatalf("unexpected connection: %+v", d)
	}
	// Test 2 - a missing env var is an error.
	if _, err = (EnvConnections{}).LoadConnection("nope"); err == nil {
		t.Fatal("expected error for missing env var")
	}
	// Test 3 - unknown schemes are rejected.
	if _, err = ConnectionTypeFromDsn("oracle://x"); err == nil {
		t.Fatal("expected error for oracle scheme")
	}
	if typ, _ := ConnectionTypeFromDsn("sqlite:/tmp/x.db"); typ != "sqlite" {
		t.Fatalf("expected sqlite, got %v", typ)
	}
}

func TestGetConfigHomeDir(t *testing.T) {
	t.Setenv(EnvVarConfigDir, "/tmp/px-config")
	dir, err := GetConfigHomeDir()
	if err != nil || dir != "/tmp/px-config" {
		t.Fatalf("expected override dir, got %v, %v", dir, err)
	}
}
