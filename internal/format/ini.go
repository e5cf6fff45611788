package format

import (
	"regexp"
	"strings"

	"github.com/sopsync/sopsync/internal/types"
)

var (
	iniDirectiveRe = regexp.MustCompile(`^\s*[#;]\s*shell:(.*)$`)
	iniKeyRe       = regexp.MustCompile(`^\s*([^:=#;\s\[][^:=\s]*)\s*=`)
)

// iniAdapter recognizes "key = value" lines, tolerating the INI convention
// of optional whitespace around "=". Comments use "#" or ";". Section
// headers are not key/value lines and never match.
type iniAdapter struct{}

func (iniAdapter) Format() types.Format { return types.FormatINI }

func (iniAdapter) MatchDirective(line string) (string, bool) {
	return matchDirective(iniDirectiveRe, line)
}

func (iniAdapter) MatchKeyValue(lineIdx int, line string) (string, types.LineSpan, bool) {
	loc := iniKeyRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return "", types.LineSpan{}, false
	}
	key := line[loc[2]:loc[3]]
	start, end := trimSpan(line, loc[1], len(line))
	return key, types.LineSpan{Line: lineIdx, Start: start, End: end}, true
}

func (iniAdapter) IsComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";")
}
