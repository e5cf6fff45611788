package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sopsync/sopsync/internal/types"
)

// Sops shells out to the sops binary for decrypt, encrypt, and targeted
// key updates. Availability is probed once per process.
type Sops struct {
	bin string

	probeOnce sync.Once
	probeErr  error
}

// NewSops creates a sops backend. An empty bin defaults to "sops" on PATH.
func NewSops(bin string) *Sops {
	if bin == "" {
		bin = "sops"
	}
	return &Sops{bin: bin}
}

func (s *Sops) Name() string { return "sops" }

// available probes the sops binary with --version.
func (s *Sops) available(ctx context.Context) error {
	s.probeOnce.Do(func() {
		if err := exec.CommandContext(ctx, s.bin, "--version").Run(); err != nil {
			s.probeErr = fmt.Errorf("%w: %q not found or not runnable, install sops or adjust PATH",
				types.ErrBackendUnavailable, s.bin)
		}
	})
	return s.probeErr
}

// Decrypt runs "sops -d <path>" and returns the plaintext.
func (s *Sops) Decrypt(ctx context.Context, path string) (string, error) {
	out, err := s.run(ctx, "-d", path)
	if err != nil {
		return "", types.NewFileError(path, fmt.Errorf("%w: %w", types.ErrDecryptFailed, err))
	}
	return out, nil
}

// Encrypt writes plaintext to a sibling temp file with the target's
// extension (so sops picks the right input store), encrypts it, and
// atomically replaces the target with the new ciphertext.
func (s *Sops) Encrypt(ctx context.Context, path string, plaintext string) error {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)

	tmp, err := os.CreateTemp(dir, ".sopsync-*"+ext)
	if err != nil {
		return types.NewFileError(path, fmt.Errorf("%w: %v", types.ErrEncryptFailed, err))
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return types.NewFileError(path, fmt.Errorf("%w: %v", types.ErrEncryptFailed, err))
	}
	if _, err := tmp.WriteString(plaintext); err != nil {
		tmp.Close()
		return types.NewFileError(path, fmt.Errorf("%w: %v", types.ErrEncryptFailed, err))
	}
	if err := tmp.Close(); err != nil {
		return types.NewFileError(path, fmt.Errorf("%w: %v", types.ErrEncryptFailed, err))
	}

	ciphertext, err := s.run(ctx, "-e", tmpName)
	if err != nil {
		return types.NewFileError(path, fmt.Errorf("%w: %v", types.ErrEncryptFailed, err))
	}

	if err := writeFileAtomic(path, []byte(ciphertext)); err != nil {
		return types.NewFileError(path, fmt.Errorf("%w: %v", types.ErrEncryptFailed, err))
	}
	return nil
}

// Set updates a single key in place via "sops --set", leaving the rest of
// the encrypted document to sops. Values that already parse as JSON are
// passed through; everything else is set as a JSON string.
func (s *Sops) Set(ctx context.Context, path, key, value string) error {
	keyJSON, err := json.Marshal(key)
	if err != nil {
		return types.NewFileError(path, err)
	}
	setArg := fmt.Sprintf("[%s] %s", keyJSON, jsonValue(value))

	if _, err := s.run(ctx, "--set", setArg, path); err != nil {
		return types.NewFileError(path, fmt.Errorf("%w: %v", types.ErrEncryptFailed, err))
	}
	return nil
}

func (s *Sops) run(ctx context.Context, args ...string) (string, error) {
	if err := s.available(ctx); err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, s.bin, args...)
	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		stderr := strings.TrimSpace(errBuf.String())
		if stderr != "" {
			return "", fmt.Errorf("sops %s: %s", args[0], stderr)
		}
		return "", fmt.Errorf("sops %s: %v", args[0], err)
	}
	return outBuf.String(), nil
}

// jsonValue encodes value for a sops --set expression.
func jsonValue(value string) string {
	if json.Valid([]byte(value)) {
		return value
	}
	encoded, _ := json.Marshal(value)
	return string(encoded)
}

// writeFileAtomic replaces path via a temp file and rename, preserving the
// target's mode when it already exists.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0600)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".sopsync-write-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
