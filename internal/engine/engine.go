// Package engine orchestrates scanning, command execution, comparison and
// rewriting for one secrets file at a time.
package engine

import (
	"context"
	"log/slog"

	"github.com/sopsync/sopsync/internal/execute"
	"github.com/sopsync/sopsync/internal/format"
	"github.com/sopsync/sopsync/internal/linefile"
	"github.com/sopsync/sopsync/internal/scan"
	"github.com/sopsync/sopsync/internal/types"
)

// Engine classifies each annotated entry of a file as in sync, out of sync,
// or failed. Commands run sequentially in file order so report ordering
// matches the document and stdout capture is never interleaved.
type Engine struct {
	runner execute.Runner
	logger *slog.Logger
}

// New creates an engine. A nil runner defaults to the shell runner with no
// timeout; a nil logger discards diagnostics.
func New(runner execute.Runner, logger *slog.Logger) *Engine {
	if runner == nil {
		runner = &execute.ShellRunner{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{runner: runner, logger: logger}
}

// Check computes sync results for f without producing any rewrite.
func (e *Engine) Check(ctx context.Context, f *types.SyncFile) error {
	return e.run(ctx, f, false)
}

// Sync computes sync results and, when at least one entry is out of sync,
// sets f.NewText to the rewritten content. Failed entries are left
// unchanged but stay in the result set; a fully in-sync file keeps NewText
// empty so the caller does not re-encrypt identical content.
func (e *Engine) Sync(ctx context.Context, f *types.SyncFile) error {
	return e.run(ctx, f, true)
}

func (e *Engine) run(ctx context.Context, f *types.SyncFile, apply bool) error {
	adapter, err := format.ForFormat(f.Format)
	if err != nil {
		return types.NewFileError(f.Path, err)
	}

	model := linefile.Load(f.Text)
	f.Entries = scan.Scan(model, adapter)
	f.Results = nil
	f.NewText = ""

	annotated := f.Annotated()
	e.logger.Debug("scanned file",
		"path", f.Path,
		"format", f.Format.String(),
		"entries", len(f.Entries),
		"annotated", len(annotated))

	for _, entry := range annotated {
		result := types.SyncResult{Entry: entry}

		out, err := e.runner.Run(ctx, entry.Annotation.Command)
		switch {
		case err != nil:
			result.Outcome = types.CommandFailed
			result.Err = err
		case out == entry.Value:
			result.Outcome = types.InSync
		default:
			result.Outcome = types.OutOfSync
			result.NewValue = out
		}

		e.logger.Debug("classified entry",
			"path", f.Path,
			"key", entry.Key,
			"line", entry.Span.Line+1,
			"outcome", result.Outcome.String())

		f.Results = append(f.Results, result)
	}

	if !apply {
		return nil
	}

	var patches []linefile.Patch
	for _, r := range f.Results {
		if r.Outcome == types.OutOfSync {
			patches = append(patches, linefile.Patch{Span: r.Entry.Span, New: r.NewValue})
		}
	}
	if len(patches) > 0 {
		f.NewText = linefile.Apply(model, patches)
	}

	return nil
}
