// Package scan walks a line model through a format adapter and produces the
// ordered list of secret entries found in a file.
package scan

import (
	"strings"

	"github.com/sopsync/sopsync/internal/format"
	"github.com/sopsync/sopsync/internal/linefile"
	"github.com/sopsync/sopsync/internal/types"
)

// Scan walks lines top-to-bottom once. A matched directive binds to the
// first following non-blank line: a key/value match produces an annotated
// entry, a comment cancels the directive (and may start a new one), and any
// other line drops the directive silently to avoid false positives on stray
// comments. Key/value lines with no directive above them still produce
// entries, without an annotation, for file inventory. Duplicate keys stay
// separate entries in file order.
func Scan(m *linefile.Model, a format.Adapter) []types.SecretEntry {
	var entries []types.SecretEntry
	var pending *types.CommandAnnotation

	for i := 0; i < m.Len(); i++ {
		line := m.Content(i)

		// Blank lines between a directive and its key/value are tolerated.
		if strings.TrimSpace(line) == "" {
			continue
		}

		if cmd, ok := a.MatchDirective(line); ok {
			pending = &types.CommandAnnotation{
				Command: cmd,
				Span:    types.LineSpan{Line: i, Start: 0, End: len(line)},
			}
			continue
		}

		if a.IsComment(line) {
			pending = nil
			continue
		}

		key, span, ok := a.MatchKeyValue(i, line)
		if !ok {
			pending = nil
			continue
		}

		entries = append(entries, types.SecretEntry{
			Key:        key,
			Value:      m.Slice(span),
			Span:       span,
			Annotation: pending,
		})
		pending = nil
	}

	return entries
}
