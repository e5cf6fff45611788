// Package config handles the optional .sopsync.yaml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sopsync/sopsync/internal/types"
)

// DefaultFile is the config filename looked up in the working directory.
const DefaultFile = ".sopsync.yaml"

// Config is the project configuration. Every field has a working zero
// value; a missing config file is not an error.
type Config struct {
	// Files are processed when the command line names none.
	Files []string `yaml:"files"`

	// Formats maps path globs to an explicit format ("yaml", "env", "ini")
	// for files whose extension does not identify them.
	Formats map[string]string `yaml:"formats"`

	// Backend forces an encryption backend: "sops", "age", or "plain".
	Backend string `yaml:"backend"`

	// Identity is the age identity file for the age backend.
	Identity string `yaml:"identity"`

	// SopsBinary overrides the sops executable name.
	SopsBinary string `yaml:"sops_binary"`

	// CommandTimeout bounds each shell command, e.g. "30s". Empty disables
	// the timeout.
	CommandTimeout string `yaml:"command_timeout"`

	// Audit configures the optional JSONL audit log.
	Audit AuditConfig `yaml:"audit"`

	// Timeout is the parsed CommandTimeout.
	Timeout time.Duration `yaml:"-"`
}

// AuditConfig configures the rolling audit log. Logging is enabled when
// Path is set.
type AuditConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.expandEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadDefault loads .sopsync.yaml from the working directory, falling back
// to an empty config when the file does not exist.
func LoadDefault() (*Config, error) {
	cfg, err := Load(DefaultFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c := &Config{}
			c.applyDefaults()
			return c, nil
		}
		return nil, err
	}
	return cfg, nil
}

// expandEnv expands environment variables in path-like string fields.
func (c *Config) expandEnv() {
	for i, f := range c.Files {
		c.Files[i] = os.ExpandEnv(f)
	}
	c.Identity = os.ExpandEnv(c.Identity)
	c.SopsBinary = os.ExpandEnv(c.SopsBinary)
	c.Audit.Path = os.ExpandEnv(c.Audit.Path)
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) applyDefaults() {
	if c.Audit.MaxSizeMB == 0 {
		c.Audit.MaxSizeMB = 10
	}
	if c.Audit.MaxBackups == 0 {
		c.Audit.MaxBackups = 3
	}
}

// Validate checks the configuration for errors and parses durations.
func (c *Config) Validate() error {
	switch c.Backend {
	case "", "sops", "age", "plain":
	default:
		return fmt.Errorf("backend must be sops, age, or plain, got %q", c.Backend)
	}

	for glob, name := range c.Formats {
		if _, err := types.ParseFormat(name); err != nil {
			return fmt.Errorf("formats[%q]: %w", glob, err)
		}
		if _, err := filepath.Match(glob, ""); err != nil {
			return fmt.Errorf("formats[%q]: invalid glob: %w", glob, err)
		}
	}

	if c.CommandTimeout != "" {
		d, err := time.ParseDuration(c.CommandTimeout)
		if err != nil {
			return fmt.Errorf("command_timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("command_timeout must not be negative")
		}
		c.Timeout = d
	}

	return nil
}

// FormatFor looks up an explicit format override for path. Globs are
// matched against both the full path and its base name.
func (c *Config) FormatFor(path string) (types.Format, bool) {
	for glob, name := range c.Formats {
		matched, err := filepath.Match(glob, path)
		if err != nil {
			continue
		}
		if !matched {
			matched, _ = filepath.Match(glob, filepath.Base(path))
		}
		if matched {
			f, err := types.ParseFormat(name)
			if err != nil {
				continue
			}
			return f, true
		}
	}
	return 0, false
}
