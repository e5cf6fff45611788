// Package report renders sync results for the caller: JSON by default for
// machine consumption, a colorized human format for terminals.
package report

import (
	"github.com/sopsync/sopsync/internal/types"
)

// EntryReport is the rendered outcome for one annotated entry.
type EntryReport struct {
	Key     string `json:"key"`
	Line    int    `json:"line"`
	Command string `json:"command"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// FileReport is the rendered result of processing one file.
type FileReport struct {
	Path    string        `json:"path"`
	Format  string        `json:"format,omitempty"`
	Secrets int           `json:"secrets"`
	Entries []EntryReport `json:"entries"`
	Updated int           `json:"updated"`
	Error   string        `json:"error,omitempty"`
}

// Summary aggregates the whole run.
type Summary struct {
	Files     int  `json:"files"`
	Secrets   int  `json:"secrets"`
	InSync    int  `json:"in_sync"`
	OutOfSync int  `json:"out_of_sync"`
	Updated   int  `json:"updated"`
	Failed    int  `json:"failed"`
	DryRun    bool `json:"dry_run"`
}

// Response is the top-level envelope printed by the CLI.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Files   []FileReport `json:"files"`
	Summary Summary      `json:"summary"`
}

// FromSyncFile renders a processed file. Secret values never appear in
// reports; outcomes and commands do.
func FromSyncFile(f *types.SyncFile, updated int) FileReport {
	fr := FileReport{
		Path:    f.Path,
		Format:  f.Format.String(),
		Secrets: len(f.Annotated()),
		Entries: make([]EntryReport, 0, len(f.Results)),
		Updated: updated,
	}
	for _, r := range f.Results {
		er := EntryReport{
			Key:     r.Entry.Key,
			Line:    r.Entry.Span.Line + 1,
			Command: r.Entry.Annotation.Command,
			Outcome: r.Outcome.String(),
		}
		if r.Err != nil {
			er.Error = r.Err.Error()
		}
		fr.Entries = append(fr.Entries, er)
	}
	return fr
}

// FailedFile renders a file that could not be processed at all (decrypt
// failure or unsupported format).
func FailedFile(path string, err error) FileReport {
	return FileReport{Path: path, Error: err.Error()}
}
