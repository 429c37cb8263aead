package observability

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteTextfile(t *testing.T) {
	LastRunBlocked.Set(1)
	FilesCheckedTotal.Add(3)
	IssuesTotal.WithLabelValues("CRITICAL", "ImportFrom").Inc()

	path := filepath.Join(t.TempDir(), "importguard.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	body := string(raw)
	for _, want := range []string{
		"importguard_last_run_blocked 1",
		"importguard_files_checked_total",
		`importguard_issues_total{kind="ImportFrom",severity="CRITICAL"}`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}

func TestWriteTextfile_MissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "importguard.prom")
	if err := WriteTextfile(path); err == nil {
		t.Fatal("expected error when the target directory does not exist")
	}
}

func TestInitTracing_NoEndpoint(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), TracingOptions{Endpoint: "  "})
	if err != nil {
		t.Fatalf("InitTracing: %v", err)
	}
	if shutdown == nil {
		t.Fatal("shutdown must never be nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown: %v", err)
	}

	_, span := Tracer.Start(context.Background(), "noop")
	span.End()
}
