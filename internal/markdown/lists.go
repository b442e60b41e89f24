package markdown

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minItemLength drops list noise such as stray markers or "ok".
const minItemLength = 4

var (
	bulletPattern   = regexp.MustCompile(`^(?:[-*+]\s+|•\s*|✅\s*|🔄\s*|\d+\.\s+)`)
	checkboxPattern = regexp.MustCompile(`^\[[ xX]\]\s*`)
	linkPattern     = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
)

func isBullet(line string) bool {
	return bulletPattern.MatchString(line)
}

// CleanItem strips bullet, checkbox, bold and link markup from a list line.
// It returns false for headings and lines too short to be meaningful.
func CleanItem(line string) (string, bool) {
	item := strings.TrimSpace(line)
	item = bulletPattern.ReplaceAllString(item, "")
	item = checkboxPattern.ReplaceAllString(item, "")
	item = strings.ReplaceAll(item, "**", "")
	item = linkPattern.ReplaceAllString(item, "$1")
	item = strings.TrimSpace(item)

	if strings.HasPrefix(item, "#") || utf8.RuneCountInString(item) < minItemLength {
		return "", false
	}
	return item, true
}

// SectionList collects the bullet items of a section body in order. A
// non-bullet line ending in ':' starts an unrelated block and ends the list.
func SectionList(body string) []string {
	items := []string{}
	for _, line := range strings.Split(normalizeNewlines(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if !isBullet(trimmed) {
			if strings.HasSuffix(trimmed, ":") {
				break
			}
			continue
		}
		if item, ok := CleanItem(trimmed); ok {
			items = append(items, item)
		}
	}
	return items
}

// LabeledList finds a "<label>:" line and collects the run of bullet lines
// directly under it. Blank lines between the label and the first bullet are
// skipped; the run ends at the first non-bullet line.
func LabeledList(text string, labels ...string) []string {
	items := []string{}
	lines := strings.Split(normalizeNewlines(text), "\n")

	start := -1
	for i, line := range lines {
		if isListLabel(line, labels) {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return items
	}

	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		if !isBullet(trimmed) {
			break
		}
		if item, ok := CleanItem(trimmed); ok {
			items = append(items, item)
		}
	}
	return items
}

func isListLabel(line string, labels []string) bool {
	candidate := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(line, "**", "")))
	if !strings.HasSuffix(candidate, ":") {
		return false
	}
	candidate = strings.TrimSpace(strings.TrimSuffix(candidate, ":"))
	for _, label := range labels {
		if candidate == strings.ToLower(label) {
			return true
		}
	}
	return false
}
