// Package types defines shared types for the sopsync engine.
package types

import "fmt"

// Format identifies the textual configuration format of a secrets file.
// It determines comment syntax, key/value separator syntax, and how a
// directive comment binds to the line below it.
type Format int

const (
	FormatYAML Format = iota
	FormatENV
	FormatINI
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatENV:
		return "env"
	case FormatINI:
		return "ini"
	default:
		return "unknown"
	}
}

// ParseFormat converts a format name (as given on the command line or in
// config) into a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "yaml", "yml":
		return FormatYAML, nil
	case "env", "dotenv":
		return FormatENV, nil
	case "ini":
		return FormatINI, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// LineSpan locates a byte range within a single line of the original text.
// Line is a zero-based line index; Start and End are byte offsets within
// that line's content, excluding the line terminator. Spans of the same
// kind never overlap within one file.
type LineSpan struct {
	Line  int `json:"line"`
	Start int `json:"start"`
	End   int `json:"end"`
}

// CommandAnnotation is a directive comment naming the shell command that is
// the source of truth for the key/value line it precedes.
type CommandAnnotation struct {
	Command string   `json:"command"`
	Span    LineSpan `json:"span"`
}

// SecretEntry is one key/value pair found in a file. Entries without an
// Annotation are inventory only: they have no source of truth to sync
// against and the engine skips them. Entries are keyed by their value span,
// not by name, so duplicate keys in different sections stay independent.
type SecretEntry struct {
	Key        string             `json:"key"`
	Value      string             `json:"value"`
	Span       LineSpan           `json:"span"`
	Annotation *CommandAnnotation `json:"annotation,omitempty"`
}

// Outcome is the terminal state of one annotated entry after its command
// has been run and compared.
type Outcome int

const (
	InSync Outcome = iota
	OutOfSync
	CommandFailed
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case InSync:
		return "in_sync"
	case OutOfSync:
		return "out_of_sync"
	case CommandFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SyncResult records the outcome for a single annotated entry. NewValue is
// set only for OutOfSync and carries the freshly captured command output
// that would replace the stored value. Err is set only for CommandFailed.
type SyncResult struct {
	Entry    *SecretEntry `json:"entry"`
	Outcome  Outcome      `json:"outcome"`
	NewValue string       `json:"new_value,omitempty"`
	Err      error        `json:"-"`
}

// SyncFile is one processed file: its decrypted text going in, the scanned
// entries and per-entry results coming out, and (in apply mode, when at
// least one entry changed) the rewritten text. It is owned exclusively by
// the single engine invocation that processes it.
type SyncFile struct {
	Path    string
	Format  Format
	Text    string
	Entries []SecretEntry
	Results []SyncResult

	// NewText is the rewritten content after an apply run. It stays empty
	// when nothing changed so the caller never re-encrypts an identical
	// file.
	NewText string
}

// Annotated returns the entries that carry a command annotation, in file
// order. Only these participate in sync.
func (f *SyncFile) Annotated() []*SecretEntry {
	var out []*SecretEntry
	for i := range f.Entries {
		if f.Entries[i].Annotation != nil {
			out = append(out, &f.Entries[i])
		}
	}
	return out
}

// Counts tallies results by outcome.
func (f *SyncFile) Counts() (inSync, outOfSync, failed int) {
	for _, r := range f.Results {
		switch r.Outcome {
		case InSync:
			inSync++
		case OutOfSync:
			outOfSync++
		case CommandFailed:
			failed++
		}
	}
	return
}
