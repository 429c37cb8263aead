package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_SaveAndLoadRecent(t *testing.T) {
	store := openTestStore(t)

	base := time.Date(2026, 2, 13, 10, 0, 0, 0, time.UTC)
	first := Snapshot{
		Timestamp:     base,
		FilesChecked:  12,
		CriticalCount: 2,
		WarningCount:  1,
		Duration:      150 * time.Millisecond,
		Issues: []IssueRecord{
			{File: "abra/pages/home.py", Line: 3, Severity: "CRITICAL", Kind: "ImportFrom", Code: "from core.x import y", Fix: "from abra.core.x import y"},
			{File: "abra/pages/home.py", Line: 3, Severity: "WARNING", Kind: "RelativeImport", Code: "from .core import z"},
		},
	}
	second := Snapshot{
		Timestamp:    base.Add(2 * time.Hour),
		FilesChecked: 12,
		Passed:       true,
	}

	firstID, err := store.SaveSnapshot("project-a", first)
	if err != nil {
		t.Fatalf("save first snapshot: %v", err)
	}
	if firstID == "" {
		t.Fatal("expected generated run id")
	}
	if _, err := store.SaveSnapshot("project-a", second); err != nil {
		t.Fatalf("save second snapshot: %v", err)
	}
	if _, err := store.SaveSnapshot("project-b", second); err != nil {
		t.Fatalf("save other project snapshot: %v", err)
	}

	all, err := store.LoadRecent("project-a", 10)
	if err != nil {
		t.Fatalf("load snapshots: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 snapshots for project-a, got %d", len(all))
	}
	if !all[0].Passed {
		t.Fatalf("expected the newest snapshot first, got %+v", all[0])
	}
	if all[1].RunID != firstID || all[1].CriticalCount != 2 || all[1].Duration != 150*time.Millisecond {
		t.Fatalf("first snapshot did not roundtrip: %+v", all[1])
	}
	if !all[1].Timestamp.Equal(base) {
		t.Fatalf("timestamp mismatch: %v", all[1].Timestamp)
	}

	issues, err := store.LoadIssues(firstID)
	if err != nil {
		t.Fatalf("load issues: %v", err)
	}
	if len(issues) != 2 || issues[0].Fix != "from abra.core.x import y" || issues[1].Kind != "RelativeImport" {
		t.Fatalf("issues did not roundtrip in order: %+v", issues)
	}
}

func TestStore_LoadRecent(t *testing.T) {
	store := openTestStore(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := store.SaveSnapshot("", Snapshot{Timestamp: base.Add(time.Duration(i) * time.Minute), FilesChecked: i}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	recent, err := store.LoadRecent("default", 3)
	if err != nil {
		t.Fatalf("load recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(recent))
	}
	if recent[0].FilesChecked != 4 || recent[2].FilesChecked != 2 {
		t.Fatalf("expected newest first, got %+v", recent)
	}

	none, err := store.LoadRecent("default", 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty result for zero limit, got %v %v", none, err)
	}
}

func TestStore_RejectsUnknownSchemaVersion(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.SaveSnapshot("p", Snapshot{SchemaVersion: 99}); err == nil {
		t.Fatal("expected schema version error")
	}
}

func TestOpen_Errors(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, err := Open(t.TempDir()); err == nil {
		t.Fatal("expected error for directory path")
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	var count int
	if err := reopened.db.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != len(migrations) {
		t.Fatalf("expected %d migrations recorded, got %d", len(migrations), count)
	}
}

func TestEnsureSchema_RejectsNewerDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.db")
	db, err := sql.Open(driverName, "file:"+path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`CREATE TABLE schema_migrations (version INTEGER PRIMARY KEY, applied_at_utc TEXT); INSERT INTO schema_migrations(version, applied_at_utc) VALUES (99, '')`); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	if _, err := Open(path); err == nil {
		t.Fatal("expected newer schema to be rejected")
	}
}

func TestIsCorruptError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.db")
	if err := os.WriteFile(path, []byte("this is definitely not sqlite content, just text padding the header"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Open(path)
	if err == nil {
		t.Fatal("expected open to fail for garbage file")
	}
	if !IsCorruptError(err) {
		t.Fatalf("expected corrupt error, got %v", err)
	}
	if IsCorruptError(nil) {
		t.Fatal("nil is not corrupt")
	}
}
