package markdown

import (
	"regexp"
	"strconv"
	"strings"
)

// labelPattern matches "<label>: value" or "<label> - value" at the start
// of a line, tolerating bold markers around the label.
func labelPattern(labels ...string) *regexp.Regexp {
	quoted := make([]string, len(labels))
	for i, label := range labels {
		quoted[i] = regexp.QuoteMeta(label)
	}
	return regexp.MustCompile(`(?im)^[ \t]*(?:\*\*)?(?:` + strings.Join(quoted, "|") +
		`)(?:\*\*)?[ \t]*[:\-](?:\*\*)?[ \t]*(\S[^\n]*?)[ \t]*$`)
}

// FindLabel returns the value of the first line in text that matches one of
// labels in label form, or "".
func FindLabel(text string, labels ...string) string {
	return findLabel(labelPattern(labels...), text)
}

func findLabel(pattern *regexp.Regexp, text string) string {
	m := pattern.FindStringSubmatch(normalizeNewlines(text))
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

var (
	// The integer part of the first percentage not glued to a preceding
	// digit or decimal point.
	percentPattern = regexp.MustCompile(`(?:^|[^\d.])(-?\d+)(?:\.\d+)?[ \t]*%`)
	leadingInt     = regexp.MustCompile(`^(-?\d+)`)
)

// ParseProgress turns "65%", "65 %" or "65" into 65. Signs are kept and
// fractions truncated, so "-5%" is -5 and "65.5%" is 65; clamping is left
// to the caller. It returns nil when the text carries no number.
func ParseProgress(text string) *int {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	m := percentPattern.FindStringSubmatch(text)
	if m == nil {
		m = leadingInt.FindStringSubmatch(text)
	}
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return &n
}
