package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"

	"github.com/sopsync/sopsync/internal/types"
)

func TestForPath(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		path    string
		want    string
		wantErr bool
	}{
		{"default is sops", Options{}, "secrets.yaml", "sops", false},
		{"age extension", Options{}, "secrets.yaml.age", "age", false},
		{"explicit plain", Options{Backend: "plain"}, "secrets.yaml", "plain", false},
		{"explicit age", Options{Backend: "age"}, "prod.env", "age", false},
		{"explicit sops beats age extension", Options{Backend: "sops"}, "x.age", "sops", false},
		{"unknown backend", Options{Backend: "vaultd"}, "x.yaml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ForPath(tt.opts, tt.path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ForPath failed: %v", err)
			}
			if b.Name() != tt.want {
				t.Errorf("backend = %q, want %q", b.Name(), tt.want)
			}
		})
	}
}

func TestPlainRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets.env")
	content := "# shell: echo hi\nKEY=hi\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	b := Plain{}
	ctx := context.Background()

	got, err := b.Decrypt(ctx, path)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if got != content {
		t.Errorf("Decrypt = %q, want %q", got, content)
	}

	updated := "# shell: echo hi\nKEY=new\n"
	if err := b.Encrypt(ctx, path, updated); err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != updated {
		t.Errorf("file content = %q, want %q", string(data), updated)
	}
}

func writeIdentity(t *testing.T) (string, *age.X25519Identity) {
	t.Helper()

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("failed to generate identity: %v", err)
	}

	// age-keygen style file: comment lines above the secret key.
	content := "# created: test\n# public key: " + identity.Recipient().String() + "\n" +
		identity.String() + "\n"

	path := filepath.Join(t.TempDir(), "identity.age")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write identity: %v", err)
	}
	return path, identity
}

func TestAgeRoundTrip(t *testing.T) {
	identityPath, _ := writeIdentity(t)
	b := NewAge(identityPath)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "secrets.yaml.age")
	plaintext := "# shell: echo hi\nfoo: hi\n"

	if err := b.Encrypt(ctx, path, plaintext); err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}

	// Ciphertext must not contain the plaintext.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(raw) == plaintext {
		t.Fatal("file was not encrypted")
	}

	got, err := b.Decrypt(ctx, path)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if got != plaintext {
		t.Errorf("Decrypt = %q, want %q", got, plaintext)
	}
}

func TestAgeMissingIdentity(t *testing.T) {
	b := NewAge(filepath.Join(t.TempDir(), "nope.age"))
	_, err := b.Decrypt(context.Background(), "whatever.age")
	if !errors.Is(err, types.ErrIdentityNotFound) {
		t.Errorf("error = %v, want ErrIdentityNotFound", err)
	}
}

func TestAgeNoIdentityConfigured(t *testing.T) {
	b := NewAge("")
	_, err := b.Decrypt(context.Background(), "whatever.age")
	if !errors.Is(err, types.ErrBackendUnavailable) {
		t.Errorf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestAgeInvalidIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.age")
	if err := os.WriteFile(path, []byte("not a key\n"), 0600); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	b := NewAge(path)
	_, err := b.Decrypt(context.Background(), "whatever.age")
	if !errors.Is(err, types.ErrInvalidIdentity) {
		t.Errorf("error = %v, want ErrInvalidIdentity", err)
	}
}

func TestSopsUnavailable(t *testing.T) {
	b := NewSops("definitely-not-a-real-binary-xyz")
	_, err := b.Decrypt(context.Background(), "secrets.yaml")
	if !errors.Is(err, types.ErrBackendUnavailable) {
		t.Errorf("error = %v, want ErrBackendUnavailable", err)
	}
}

func TestJSONValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"hi", `"hi"`},
		{"123", "123"},
		{"true", "true"},
		{`{"a":1}`, `{"a":1}`},
		{"with spaces", `"with spaces"`},
		{`quo"te`, `"quo\"te"`},
	}

	for _, tt := range tests {
		if got := jsonValue(tt.in); got != tt.want {
			t.Errorf("jsonValue(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestWriteFileAtomicPreservesMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	if err := os.WriteFile(path, []byte("old"), 0640); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if err := writeFileAtomic(path, []byte("new")); err != nil {
		t.Fatalf("writeFileAtomic failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0640 {
		t.Errorf("mode = %v, want 0640", info.Mode().Perm())
	}
	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("content = %q, want %q", string(data), "new")
	}
}
