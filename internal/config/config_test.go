package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sopsync/sopsync/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".sopsync.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
files:
  - secrets.yaml
  - prod.env
formats:
  "*.conf": ini
backend: sops
command_timeout: 30s
audit:
  path: /var/log/sopsync/audit.log
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Files) != 2 || cfg.Files[0] != "secrets.yaml" {
		t.Errorf("Files = %v", cfg.Files)
	}
	if cfg.Backend != "sops" {
		t.Errorf("Backend = %q", cfg.Backend)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.Audit.Path != "/var/log/sopsync/audit.log" {
		t.Errorf("Audit.Path = %q", cfg.Audit.Path)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "files: [a.yaml]\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Audit.MaxSizeMB != 10 {
		t.Errorf("Audit.MaxSizeMB = %d, want 10", cfg.Audit.MaxSizeMB)
	}
	if cfg.Audit.MaxBackups != 3 {
		t.Errorf("Audit.MaxBackups = %d, want 3", cfg.Audit.MaxBackups)
	}
	if cfg.Timeout != 0 {
		t.Errorf("Timeout = %v, want 0 (disabled)", cfg.Timeout)
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SOPSYNC_TEST_HOME", "/home/tester")

	cfg, err := Load(writeConfig(t, `
files:
  - $SOPSYNC_TEST_HOME/secrets.yaml
identity: $SOPSYNC_TEST_HOME/identity.age
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Files[0] != "/home/tester/secrets.yaml" {
		t.Errorf("Files[0] = %q", cfg.Files[0])
	}
	if cfg.Identity != "/home/tester/identity.age" {
		t.Errorf("Identity = %q", cfg.Identity)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad backend", "backend: gpg\n"},
		{"bad format name", "formats:\n  \"*.x\": toml\n"},
		{"bad timeout", "command_timeout: soon\n"},
		{"negative timeout", "command_timeout: -5s\n"},
		{"not yaml", ": : :\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadDefaultMissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault failed: %v", err)
	}
	if len(cfg.Files) != 0 {
		t.Errorf("Files = %v, want empty", cfg.Files)
	}
	if cfg.Audit.MaxSizeMB != 10 {
		t.Errorf("defaults not applied: MaxSizeMB = %d", cfg.Audit.MaxSizeMB)
	}
}

func TestFormatFor(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
formats:
  "*.secrets": yaml
  "legacy.conf": ini
`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if f, ok := cfg.FormatFor("prod.secrets"); !ok || f != types.FormatYAML {
		t.Errorf("FormatFor(prod.secrets) = %v, %v", f, ok)
	}
	if f, ok := cfg.FormatFor("etc/legacy.conf"); !ok || f != types.FormatINI {
		t.Errorf("FormatFor(etc/legacy.conf) = %v, %v (base name should match)", f, ok)
	}
	if _, ok := cfg.FormatFor("other.yaml"); ok {
		t.Error("FormatFor(other.yaml) should not match any glob")
	}
}
