package llm

import (
	"regexp"
	"strings"
)

var (
	// fencedObject matches a JSON object inside a markdown fence.
	fencedObject = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(\\{.*\\})\\s*```")
	// bareObject is the greedy fallback from the first { to the last }.
	bareObject = regexp.MustCompile(`(?s)\{.*\}`)
	// danglingComma matches a comma directly before a closing bracket.
	danglingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// ExtractJSON pulls the JSON object out of a model response. Models wrap
// output in markdown fences, prepend chatter, and leave // comments and
// trailing commas; all of these are removed. It returns "" when no object
// is present.
func ExtractJSON(content string) string {
	var raw string
	if m := fencedObject.FindStringSubmatch(content); len(m) > 1 {
		raw = m[1]
	} else {
		raw = bareObject.FindString(content)
	}
	if raw == "" {
		return ""
	}

	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = stripComment(line)
	}
	return danglingComma.ReplaceAllString(strings.Join(lines, "\n"), "$1")
}

// stripComment drops a trailing // comment that is outside any string.
func stripComment(line string) string {
	if !strings.Contains(line, "//") {
		return line
	}
	inString, escaped := false, false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '/' && i+1 < len(line) && line[i+1] == '/':
			return strings.TrimRight(line[:i], " \t")
		}
	}
	return line
}
