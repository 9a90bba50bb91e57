package persist

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestKV(t *testing.T) *SQLite {
	t.Helper()
	kv, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}

func TestSQLite_PutGetDelete(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v err %v, want absent", ok, err)
	}

	if err := kv.Put(ctx, "favorites", "[1]"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Put(ctx, "favorites", "[1,2]"); err != nil {
		t.Fatal(err)
	}
	got, ok, err := kv.Get(ctx, "favorites")
	if err != nil || !ok || got != "[1,2]" {
		t.Fatalf("Get = %q %v %v, want [1,2]", got, ok, err)
	}

	if err := kv.Delete(ctx, "favorites"); err != nil {
		t.Fatal(err)
	}
	if err := kv.Delete(ctx, "favorites"); err != nil {
		t.Fatalf("second Delete returned error: %v", err)
	}
	if _, ok, _ := kv.Get(ctx, "favorites"); ok {
		t.Fatal("key still present after Delete")
	}
}

func TestSQLite_Purge(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := kv.Put(ctx, k, "1"); err != nil {
			t.Fatal(err)
		}
	}
	if err := kv.Purge(ctx); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, ok, _ := kv.Get(ctx, k); ok {
			t.Fatalf("key %q survived Purge", k)
		}
	}
}

func TestOpenSQLite_ReopenKeepsDataAndSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")
	ctx := context.Background()

	kv, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite returned error: %v", err)
	}
	if err := kv.Put(ctx, "k", "v"); err != nil {
		t.Fatal(err)
	}
	kv.Close()

	kv, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer kv.Close()

	got, ok, err := kv.Get(ctx, "k")
	if err != nil || !ok || got != "v" {
		t.Fatalf("Get after reopen = %q %v %v", got, ok, err)
	}

	var version int
	if err := kv.db.QueryRow(`SELECT MAX(version) FROM schema_version`).Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != len(migrations) {
		t.Fatalf("schema version = %d, want %d", version, len(migrations))
	}
}
