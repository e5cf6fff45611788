// Package execute runs annotation commands through the platform shell.
package execute

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sopsync/sopsync/internal/types"
)

// Runner is the capability the sync engine depends on: a single shell
// command in, captured stdout or an error out. Keeping it an interface lets
// the engine be tested without spawning real processes.
type Runner interface {
	Run(ctx context.Context, command string) (string, error)
}

// ShellRunner executes commands via "sh -c" with the parent environment.
// The command text is passed to the shell exactly as written in the
// annotation; the annotation author owns shell quoting.
type ShellRunner struct {
	// Timeout, when positive, bounds each command. A hang becomes an
	// ExecError wrapping ErrCommandTimeout instead of blocking the sync.
	Timeout time.Duration
}

// Run captures the command's standard output with exactly one trailing
// newline stripped; all other whitespace is preserved verbatim, since a
// secret value may legitimately contain significant whitespace. A nonzero
// exit status or launch failure yields an ExecError carrying the trimmed
// stderr, never partial output. Stderr is not part of the value.
func (r *ShellRunner) Run(ctx context.Context, command string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Env = os.Environ()

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		stderr := strings.TrimSpace(errBuf.String())
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", types.NewExecError(command, stderr, types.ErrCommandTimeout)
		}
		return "", types.NewExecError(command, stderr, types.ErrCommandFailed)
	}

	return trimTrailingNewline(outBuf.String()), nil
}

// trimTrailingNewline strips at most one trailing line terminator.
func trimTrailingNewline(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
