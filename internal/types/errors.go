// Package types defines shared types for the sopsync engine.
package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the sopsync system.
var (
	// Format errors
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// Command execution errors
	ErrCommandFailed  = errors.New("command failed")
	ErrCommandTimeout = errors.New("command timed out")

	// Encryption backend errors
	ErrBackendUnavailable = errors.New("encryption backend unavailable")
	ErrDecryptFailed      = errors.New("decryption failed")
	ErrEncryptFailed      = errors.New("encryption failed")
	ErrIdentityNotFound   = errors.New("identity file not found")
	ErrInvalidIdentity    = errors.New("invalid age identity")
)

// ExecError wraps a shell command failure with the command text and the
// command's trimmed standard error for diagnostics. Stderr is never treated
// as secret content.
type ExecError struct {
	Command string
	Stderr  string
	Err     error
}

func (e *ExecError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("command %q: %v: %s", e.Command, e.Err, e.Stderr)
	}
	return fmt.Sprintf("command %q: %v", e.Command, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// NewExecError creates a new ExecError.
func NewExecError(command, stderr string, err error) *ExecError {
	return &ExecError{Command: command, Stderr: stderr, Err: err}
}

// FileError wraps an error with the path of the file being processed.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("file %q: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// NewFileError creates a new FileError.
func NewFileError(path string, err error) *FileError {
	return &FileError{Path: path, Err: err}
}
