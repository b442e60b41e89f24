// Package markdown extracts project-status fields from loosely structured
// markdown. It understands a deliberately narrow subset: "## " sections,
// "Label: value" lines and bullet lists. It is not a markdown grammar.
package markdown

import (
	"maps"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// DefaultSection keys the text that precedes the first "## " heading.
const DefaultSection = "default"

// Sections maps a lower-cased, trimmed "## " heading to the trimmed body
// that follows it.
type Sections map[string]string

// SplitSections splits text on lines that begin with exactly "## ".
// Deeper headings ("###") stay part of the current body, and the first of
// two identical headings wins. The result always
// holds a DefaultSection entry, possibly empty.
func SplitSections(text string) Sections {
	text = normalizeNewlines(text)
	sections := Sections{DefaultSection: ""}

	current := DefaultSection
	var body []string
	flush := func() {
		// A repeated heading keeps the body of its first occurrence.
		if _, seen := sections[current]; seen && current != DefaultSection {
			return
		}
		sections[current] = strings.TrimSpace(strings.Join(body, "\n"))
	}

	for _, line := range strings.Split(text, "\n") {
		if isSectionHeading(line) {
			flush()
			current = strings.ToLower(strings.TrimSpace(line[3:]))
			body = body[:0]
			continue
		}
		body = append(body, line)
	}
	flush()

	return sections
}

// Lookup returns the body of the first section, in synonym order, whose
// normalized heading equals one of names.
func (s Sections) Lookup(names ...string) (string, bool) {
	headings := slices.Sorted(maps.Keys(s))
	for _, name := range names {
		want := NormalizeHeading(name)
		if body, ok := s[want]; ok && want != DefaultSection {
			return body, true
		}
		for _, heading := range headings {
			if heading != DefaultSection && NormalizeHeading(heading) == want {
				return s[heading], true
			}
		}
	}
	return "", false
}

// NormalizeHeading lower-cases a heading and strips bold markers, emoji and
// other decoration so "## ✅ **Completed Features**" matches
// "completed features".
func NormalizeHeading(heading string) string {
	cleaned, _, err := transform.String(runes.Remove(runes.In(unicode.So)), heading)
	if err != nil {
		cleaned = heading
	}
	cleaned = strings.ReplaceAll(cleaned, "**", "")
	cleaned = strings.ReplaceAll(cleaned, "\ufe0f", "")
	cleaned = strings.Trim(strings.TrimSpace(cleaned), ":")
	return strings.ToLower(strings.Join(strings.Fields(cleaned), " "))
}

func isSectionHeading(line string) bool {
	return strings.HasPrefix(line, "## ")
}

func normalizeNewlines(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
