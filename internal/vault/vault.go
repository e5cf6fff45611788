// Package vault provides the encryption-backend collaborators that own
// decrypt/encrypt round-tripping of secrets files. The sync engine itself
// only ever sees decrypted plaintext.
package vault

import (
	"context"
	"fmt"
	"strings"
)

// Backend decrypts a secrets file into plaintext and persists rewritten
// plaintext back through the encryption layer.
type Backend interface {
	// Name identifies the backend in reports and logs.
	Name() string

	// Decrypt returns the plaintext of the file at path.
	Decrypt(ctx context.Context, path string) (string, error)

	// Encrypt re-encrypts plaintext and writes it back to path.
	Encrypt(ctx context.Context, path string, plaintext string) error
}

// Options selects and configures a backend.
type Options struct {
	// Backend forces a specific backend: "sops", "age", or "plain".
	// Empty means auto-select from the file path.
	Backend string

	// IdentityPath is the age identity file, required by the age backend.
	IdentityPath string

	// SopsBinary overrides the sops executable name.
	SopsBinary string
}

// ForPath picks the backend for a file. Explicit selection wins; otherwise
// ".age" files use the age backend and everything else goes through sops,
// which is the normal deployment for annotated secrets files.
func ForPath(opts Options, path string) (Backend, error) {
	name := opts.Backend
	if name == "" {
		if strings.HasSuffix(path, ".age") {
			name = "age"
		} else {
			name = "sops"
		}
	}

	switch name {
	case "sops":
		return NewSops(opts.SopsBinary), nil
	case "age":
		return NewAge(opts.IdentityPath), nil
	case "plain":
		return Plain{}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q (must be sops, age, or plain)", name)
	}
}
