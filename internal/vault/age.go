package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"filippo.io/age"

	"github.com/sopsync/sopsync/internal/types"
)

// Age encrypts and decrypts whole files with an age X25519 identity.
type Age struct {
	identityPath string
}

// NewAge creates an age backend reading its identity from identityPath.
func NewAge(identityPath string) *Age {
	return &Age{identityPath: identityPath}
}

func (a *Age) Name() string { return "age" }

// identity loads the X25519 identity, skipping the comment lines that
// age-keygen writes above the secret key.
func (a *Age) identity() (*age.X25519Identity, error) {
	if a.identityPath == "" {
		return nil, fmt.Errorf("%w: no identity file configured", types.ErrBackendUnavailable)
	}

	data, err := os.ReadFile(a.identityPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewFileError(a.identityPath, types.ErrIdentityNotFound)
		}
		return nil, types.NewFileError(a.identityPath, err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		identity, err := age.ParseX25519Identity(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidIdentity, err)
		}
		return identity, nil
	}

	return nil, fmt.Errorf("%w: no key found in %s", types.ErrInvalidIdentity, a.identityPath)
}

// Decrypt reads and decrypts the file at path.
func (a *Age) Decrypt(_ context.Context, path string) (string, error) {
	identity, err := a.identity()
	if err != nil {
		return "", err
	}

	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return "", types.NewFileError(path, err)
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return "", types.NewFileError(path, fmt.Errorf("%w: %v", types.ErrDecryptFailed, err))
	}

	plaintext, err := io.ReadAll(r)
	if err != nil {
		return "", types.NewFileError(path, fmt.Errorf("%w: read failed: %v", types.ErrDecryptFailed, err))
	}
	return string(plaintext), nil
}

// Encrypt encrypts plaintext to the identity's own recipient and atomically
// replaces the file at path.
func (a *Age) Encrypt(_ context.Context, path string, plaintext string) error {
	identity, err := a.identity()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, identity.Recipient())
	if err != nil {
		return types.NewFileError(path, fmt.Errorf("%w: %v", types.ErrEncryptFailed, err))
	}
	if _, err := io.WriteString(w, plaintext); err != nil {
		return types.NewFileError(path, fmt.Errorf("%w: write failed: %v", types.ErrEncryptFailed, err))
	}
	if err := w.Close(); err != nil {
		return types.NewFileError(path, fmt.Errorf("%w: close failed: %v", types.ErrEncryptFailed, err))
	}

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return types.NewFileError(path, fmt.Errorf("%w: %v", types.ErrEncryptFailed, err))
	}
	return nil
}
