// Package linefile models a text file as an ordered sequence of lines with
// stable byte offsets, so values can be replaced surgically without
// re-serializing or reformatting anything else. Every byte outside a
// replaced span survives bit-identically, including line terminators,
// which matters because the document is normally diffed and re-encrypted
// by a separate layer.
package linefile

import (
	"sort"
	"strings"

	"github.com/sopsync/sopsync/internal/types"
)

// Line is one line of the original text. Content excludes the terminator;
// Terminator is "\n", "\r\n", or "" for a final unterminated line.
type Line struct {
	Content    string
	Terminator string
}

// Model is an immutable sequence of lines. Replace returns a new Model.
type Model struct {
	lines []Line
}

// Load splits text into lines, preserving each line's own terminator so
// mixed or missing trailing newlines round-trip unchanged.
func Load(text string) *Model {
	var lines []Line
	for len(text) > 0 {
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			lines = append(lines, Line{Content: text})
			break
		}
		content, term := text[:idx], "\n"
		if strings.HasSuffix(content, "\r") {
			content, term = content[:len(content)-1], "\r\n"
		}
		lines = append(lines, Line{Content: content, Terminator: term})
		text = text[idx+1:]
	}
	return &Model{lines: lines}
}

// Len returns the number of lines.
func (m *Model) Len() int {
	return len(m.lines)
}

// Content returns the content of line i without its terminator.
func (m *Model) Content(i int) string {
	return m.lines[i].Content
}

// Slice returns the exact substring located by span.
func (m *Model) Slice(span types.LineSpan) string {
	return m.lines[span.Line].Content[span.Start:span.End]
}

// Replace returns a new Model with only the span's bytes substituted.
// All other lines are shared unchanged.
func (m *Model) Replace(span types.LineSpan, newText string) *Model {
	lines := make([]Line, len(m.lines))
	copy(lines, m.lines)
	old := lines[span.Line]
	lines[span.Line] = Line{
		Content:    old.Content[:span.Start] + newText + old.Content[span.End:],
		Terminator: old.Terminator,
	}
	return &Model{lines: lines}
}

// Text reassembles the full file content.
func (m *Model) Text() string {
	var b strings.Builder
	for _, l := range m.lines {
		b.WriteString(l.Content)
		b.WriteString(l.Terminator)
	}
	return b.String()
}

// Patch is one accepted value replacement.
type Patch struct {
	Span types.LineSpan
	New  string
}

// Apply produces new file content with every patch's span substituted and
// every other byte copied verbatim. Patches may arrive in any order; they
// are applied position-sorted in a single pass. Spans are disjoint by
// construction (each entry owns its own value token), so ordering within a
// line is unambiguous. Apply(m, nil) returns m.Text() byte-identically.
func Apply(m *Model, patches []Patch) string {
	byLine := make(map[int][]Patch, len(patches))
	for _, p := range patches {
		byLine[p.Span.Line] = append(byLine[p.Span.Line], p)
	}
	for _, ps := range byLine {
		sort.Slice(ps, func(i, j int) bool { return ps[i].Span.Start < ps[j].Span.Start })
	}

	var b strings.Builder
	for i, l := range m.lines {
		ps := byLine[i]
		if len(ps) == 0 {
			b.WriteString(l.Content)
			b.WriteString(l.Terminator)
			continue
		}
		pos := 0
		for _, p := range ps {
			b.WriteString(l.Content[pos:p.Span.Start])
			b.WriteString(p.New)
			pos = p.Span.End
		}
		b.WriteString(l.Content[pos:])
		b.WriteString(l.Terminator)
	}
	return b.String()
}
