package vault

import (
	"context"
	"os"

	"github.com/sopsync/sopsync/internal/types"
)

// Plain reads and writes files without any encryption layer. Useful for
// unencrypted dotenv files and for exercising the pipeline in tests.
type Plain struct{}

func (Plain) Name() string { return "plain" }

func (Plain) Decrypt(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", types.NewFileError(path, err)
	}
	return string(data), nil
}

func (Plain) Encrypt(_ context.Context, path string, plaintext string) error {
	if err := writeFileAtomic(path, []byte(plaintext)); err != nil {
		return types.NewFileError(path, err)
	}
	return nil
}
