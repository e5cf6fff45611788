package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sopsync/sopsync/internal/audit"
	"github.com/sopsync/sopsync/internal/config"
	"github.com/sopsync/sopsync/internal/engine"
	"github.com/sopsync/sopsync/internal/execute"
	"github.com/sopsync/sopsync/internal/format"
	"github.com/sopsync/sopsync/internal/report"
	"github.com/sopsync/sopsync/internal/types"
	"github.com/sopsync/sopsync/internal/vault"
)

// processor wires config, engine, backends and audit logging together for
// one check or sync invocation.
type processor struct {
	cfg     *config.Config
	eng     *engine.Engine
	auditor *audit.Logger
	logger  *slog.Logger
	apply   bool
	viaSet  bool
}

func newProcessor(apply, viaSet bool) (*processor, error) {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	timeout := cfg.Timeout
	if cmdTimeout > 0 {
		timeout = cmdTimeout
	}
	runner := &execute.ShellRunner{Timeout: timeout}

	return &processor{
		cfg:     cfg,
		eng:     engine.New(runner, logger),
		auditor: audit.New(cfg.Audit),
		logger:  logger,
		apply:   apply,
		viaSet:  viaSet,
	}, nil
}

func (p *processor) close() {
	if err := p.auditor.Close(); err != nil {
		p.logger.Warn("failed to close audit log", "error", err)
	}
}

// resolveFiles picks the files to process: command-line args win, then the
// config file list. Every file must exist before any processing starts.
func (p *processor) resolveFiles(args []string) ([]string, error) {
	files := args
	if len(files) == 0 {
		files = p.cfg.Files
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files given (pass paths or list them under 'files' in %s)", config.DefaultFile)
	}

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			return nil, fmt.Errorf("file not found: %s", f)
		}
	}
	return files, nil
}

func (p *processor) formatFor(path string) (types.Format, error) {
	if formatName != "" {
		return types.ParseFormat(formatName)
	}
	if f, ok := p.cfg.FormatFor(path); ok {
		return f, nil
	}
	adapter, err := format.Detect(path)
	if err != nil {
		return 0, err
	}
	return adapter.Format(), nil
}

func (p *processor) backendFor(path string) (vault.Backend, error) {
	opts := vault.Options{
		Backend:      backendName,
		IdentityPath: identityPath,
		SopsBinary:   p.cfg.SopsBinary,
	}
	if opts.Backend == "" {
		opts.Backend = p.cfg.Backend
	}
	if opts.IdentityPath == "" {
		opts.IdentityPath = p.cfg.Identity
	}
	return vault.ForPath(opts, path)
}

// processFile runs the full pipeline for one file. A failure to decrypt or
// detect the format aborts this file only; the error is folded into the
// report so other files still get processed.
func (p *processor) processFile(ctx context.Context, path string) (report.FileReport, error) {
	f, err := p.formatFor(path)
	if err != nil {
		return report.FailedFile(path, err), err
	}

	backend, err := p.backendFor(path)
	if err != nil {
		return report.FailedFile(path, err), err
	}

	p.logger.Debug("decrypting file", "path", path, "backend", backend.Name())
	text, err := backend.Decrypt(ctx, path)
	if err != nil {
		return report.FailedFile(path, err), err
	}

	sf := &types.SyncFile{Path: path, Format: f, Text: text}
	if p.apply {
		err = p.eng.Sync(ctx, sf)
	} else {
		err = p.eng.Check(ctx, sf)
	}
	if err != nil {
		return report.FailedFile(path, err), err
	}

	action := audit.ActionCheck
	if p.apply {
		action = audit.ActionSync
	}
	for _, r := range sf.Results {
		detail := ""
		if r.Err != nil {
			detail = r.Err.Error()
		}
		if err := p.auditor.Log(action, path, r.Entry.Key, r.Outcome.String(), detail); err != nil {
			p.logger.Warn("failed to write audit entry", "error", err)
		}
	}

	updated := 0
	if p.apply {
		updated, err = p.persist(ctx, backend, sf)
		if err != nil {
			fr := report.FromSyncFile(sf, 0)
			fr.Error = err.Error()
			return fr, err
		}
	}

	return report.FromSyncFile(sf, updated), nil
}

// persist writes out-of-sync values back through the encryption backend.
// Nothing is written when no entry changed, so an in-sync file stays
// byte-identical on disk.
func (p *processor) persist(ctx context.Context, backend vault.Backend, sf *types.SyncFile) (int, error) {
	_, outOfSync, _ := sf.Counts()
	if outOfSync == 0 {
		return 0, nil
	}

	if p.viaSet {
		sops, ok := backend.(*vault.Sops)
		if !ok {
			return 0, fmt.Errorf("--via-set requires the sops backend, got %s", backend.Name())
		}
		updated := 0
		for _, r := range sf.Results {
			if r.Outcome != types.OutOfSync {
				continue
			}
			if err := sops.Set(ctx, sf.Path, r.Entry.Key, r.NewValue); err != nil {
				return updated, err
			}
			updated++
		}
		return updated, nil
	}

	if sf.NewText == "" {
		return 0, nil
	}
	p.logger.Debug("re-encrypting file", "path", sf.Path, "updated", outOfSync)
	if err := backend.Encrypt(ctx, sf.Path, sf.NewText); err != nil {
		return 0, err
	}
	return outOfSync, nil
}

// run processes every file and prints the report. The returned error sets
// the process exit code: per-entry command failures and per-file errors
// never stop processing of the remaining files.
func run(args []string, apply, viaSet bool) error {
	p, err := newProcessor(apply, viaSet)
	if err != nil {
		return err
	}
	defer p.close()

	files, err := p.resolveFiles(args)
	if err != nil {
		return err
	}

	ctx := context.Background()
	resp := report.Response{Success: true, Summary: report.Summary{DryRun: !apply}}
	var firstErr error

	start := time.Now()
	for _, path := range files {
		fr, err := p.processFile(ctx, path)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		resp.Files = append(resp.Files, fr)

		resp.Summary.Files++
		resp.Summary.Secrets += fr.Secrets
		resp.Summary.Updated += fr.Updated
		for _, e := range fr.Entries {
			switch e.Outcome {
			case "in_sync":
				resp.Summary.InSync++
			case "out_of_sync":
				resp.Summary.OutOfSync++
			case "failed":
				resp.Summary.Failed++
			}
		}
	}
	p.logger.Debug("run complete", "files", resp.Summary.Files, "elapsed", time.Since(start))

	if firstErr != nil || resp.Summary.Failed > 0 {
		resp.Success = false
	}

	if err := report.GetFormatter(report.Mode(outputMode)).Format(os.Stdout, resp); err != nil {
		return err
	}

	if firstErr != nil {
		return firstErr
	}
	if resp.Summary.Failed > 0 {
		return fmt.Errorf("%d command(s) failed", resp.Summary.Failed)
	}
	return nil
}
