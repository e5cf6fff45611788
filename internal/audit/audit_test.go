package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sopsync/sopsync/internal/config"
)

func TestNewDisabledWithoutPath(t *testing.T) {
	if l := New(config.AuditConfig{}); l != nil {
		t.Error("expected nil logger when no path is configured")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	if err := l.Log(ActionCheck, "f", "k", "in_sync", ""); err != nil {
		t.Errorf("nil Log returned %v", err)
	}
	if err := l.Close(); err != nil {
		t.Errorf("nil Close returned %v", err)
	}
}

func TestLogWritesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l := New(config.AuditConfig{Path: path, MaxSizeMB: 1, MaxBackups: 1})
	if l == nil {
		t.Fatal("expected logger")
	}
	defer l.Close()

	if err := l.Log(ActionCheck, "secrets.yaml", "db_password", "out_of_sync", ""); err != nil {
		t.Fatalf("Log failed: %v", err)
	}
	if err := l.Log(ActionSync, "secrets.yaml", "api_key", "failed", "command \"false\": command failed"); err != nil {
		t.Fatalf("Log failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open audit log: %v", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("malformed audit line %q: %v", scanner.Text(), err)
		}
		entries = append(entries, e)
	}

	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Action != ActionCheck || entries[0].Key != "db_password" {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Outcome != "failed" || entries[1].Detail == "" {
		t.Errorf("second entry = %+v", entries[1])
	}
	if entries[0].RunID == "" || entries[0].RunID != entries[1].RunID {
		t.Errorf("entries of one run must share a run ID: %q vs %q",
			entries[0].RunID, entries[1].RunID)
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}
