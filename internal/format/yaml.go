package format

import (
	"regexp"
	"strings"

	"github.com/sopsync/sopsync/internal/types"
)

var (
	yamlDirectiveRe = regexp.MustCompile(`^\s*#\s*shell:(.*)$`)
	yamlKeyRe       = regexp.MustCompile(`^\s*([^:=#\s]+)\s*:`)
)

// yamlAdapter recognizes "key: value" lines. The value is everything after
// the first colon with surrounding whitespace trimmed; quoting, if present,
// is part of the value text and round-trips unchanged when unmodified.
type yamlAdapter struct{}

func (yamlAdapter) Format() types.Format { return types.FormatYAML }

func (yamlAdapter) MatchDirective(line string) (string, bool) {
	return matchDirective(yamlDirectiveRe, line)
}

func (yamlAdapter) MatchKeyValue(lineIdx int, line string) (string, types.LineSpan, bool) {
	loc := yamlKeyRe.FindStringSubmatchIndex(line)
	if loc == nil {
		return "", types.LineSpan{}, false
	}
	key := line[loc[2]:loc[3]]
	start, end := trimSpan(line, loc[1], len(line))
	return key, types.LineSpan{Line: lineIdx, Start: start, End: end}, true
}

func (yamlAdapter) IsComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// matchDirective applies a directive regexp and trims the captured command.
// An empty command is not a directive.
func matchDirective(re *regexp.Regexp, line string) (string, bool) {
	m := re.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	cmd := strings.TrimSpace(m[1])
	if cmd == "" {
		return "", false
	}
	return cmd, true
}
