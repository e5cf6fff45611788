// Package format provides per-format recognizers for directive comments and
// key/value lines. Adapters understand just enough of each format's grammar
// to locate a value's exact byte span; they never parse or re-serialize the
// document, so untouched content keeps its quoting and indentation.
package format

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sopsync/sopsync/internal/types"
)

// Adapter recognizes the comment-directive syntax and key/value lines for
// one format. Implementations form a small closed set; the scanning
// algorithm itself lives in the scan package and is shared.
type Adapter interface {
	// Format returns the format this adapter recognizes.
	Format() types.Format

	// MatchDirective reports whether line is a full-line directive comment
	// of the form "<marker> shell: <command>" and returns the trimmed
	// command. A directive with an empty command does not match.
	MatchDirective(line string) (command string, ok bool)

	// MatchKeyValue reports whether line is a key/value line and returns
	// the key name and the exact span of the value token within the line.
	MatchKeyValue(lineIdx int, line string) (key string, span types.LineSpan, ok bool)

	// IsComment reports whether line is a comment for this format.
	IsComment(line string) bool
}

// ForFormat returns the adapter for an explicitly selected format.
func ForFormat(f types.Format) (Adapter, error) {
	switch f {
	case types.FormatYAML:
		return yamlAdapter{}, nil
	case types.FormatENV:
		return envAdapter{}, nil
	case types.FormatINI:
		return iniAdapter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, f)
	}
}

// Detect infers the format from a filename. A trailing ".age" extension is
// stripped first so "secrets.yaml.age" detects as YAML.
func Detect(path string) (Adapter, error) {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ".age") {
		name = strings.TrimSuffix(name, ".age")
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return yamlAdapter{}, nil
	case ".env":
		return envAdapter{}, nil
	case ".ini", ".cfg", ".conf":
		return iniAdapter{}, nil
	}

	// Dotenv files are commonly named ".env" or ".env.<stage>".
	if name == ".env" || strings.HasPrefix(name, ".env.") {
		return envAdapter{}, nil
	}

	return nil, types.NewFileError(path, types.ErrUnsupportedFormat)
}

// trimSpan narrows [start,end) within line so it excludes surrounding
// whitespace. An all-whitespace region collapses to an empty span at end.
func trimSpan(line string, start, end int) (int, int) {
	for start < end && (line[start] == ' ' || line[start] == '\t') {
		start++
	}
	for end > start && (line[end-1] == ' ' || line[end-1] == '\t') {
		end--
	}
	return start, end
}
