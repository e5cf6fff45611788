package format

import (
	"regexp"
	"strings"

	"github.com/sopsync/sopsync/internal/types"
)

var (
	envDirectiveRe = regexp.MustCompile(`^\s*#\s*shell:(.*)$`)
	envKeyRe       = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)=`)
)

// envAdapter recognizes "KEY=value" lines. The value is taken verbatim
// after the first "=" to end of line, trailing whitespace included, since
// dotenv values carry no quoting convention the tool could rely on.
type envAdapter struct{}

func (envAdapter) Format() types.Format { return types.FormatENV }

func (envAdapter) MatchDirective(line string) (string, bool) {
	return matchDirective(envDirectiveRe, line)
}

func (envAdapter) MatchKeyValue(lineIdx int, line string) (string, types.LineSpan, bool) {
	loc := envKeyRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return "", types.LineSpan{}, false
	}
	key := line[loc[2]:loc[3]]
	return key, types.LineSpan{Line: lineIdx, Start: loc[1], End: len(line)}, true
}

func (envAdapter) IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}
