// Package audit provides append-only JSONL logging of sync runs.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sopsync/sopsync/internal/config"
)

// Entry is one audit record. Secret values are never written; outcomes,
// keys, and commands are.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`
	Action    string    `json:"action"`
	File      string    `json:"file,omitempty"`
	Key       string    `json:"key,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

// Actions recorded in the log.
const (
	ActionCheck = "check"
	ActionSync  = "sync"
)

// Logger writes entries for a single run, all sharing one run ID, to a
// size-rotated log file. A nil Logger is valid and discards everything.
type Logger struct {
	mu    sync.Mutex
	w     io.WriteCloser
	runID string
}

// New creates a logger writing to the configured rolling file. Returns nil
// (auditing disabled) when no path is configured.
func New(cfg config.AuditConfig) *Logger {
	if cfg.Path == "" {
		return nil
	}
	return &Logger{
		w: &lumberjack.Logger{
			Filename:   cfg.Path,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		},
		runID: uuid.New().String(),
	}
}

// Log appends one entry as a JSON line.
func (l *Logger) Log(action, file, key, outcome, detail string) error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Timestamp: time.Now().UTC(),
		RunID:     l.runID,
		Action:    action,
		File:      file,
		Key:       key,
		Outcome:   outcome,
		Detail:    detail,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	if _, err := l.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Close closes the underlying log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Close()
}
