package markdown

import "strings"

// CatalogEntry is one project cut out of a multi-project catalog document.
type CatalogEntry struct {
	Title string
	// Document is the entry rewritten as a standalone project document:
	// a "# Title" line followed by the body with "###" promoted to "##".
	Document string
}

// SplitCatalog splits a catalog on "## " headings, one project per heading.
// Text before the first heading is ignored.
func SplitCatalog(text string) []CatalogEntry {
	var (
		entries []CatalogEntry
		title   string
		body    []string
		open    bool
	)
	flush := func() {
		if !open || title == "" {
			return
		}
		var b strings.Builder
		b.WriteString("# ")
		b.WriteString(title)
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(strings.Join(body, "\n")))
		b.WriteString("\n")
		entries = append(entries, CatalogEntry{Title: title, Document: b.String()})
	}

	for _, line := range strings.Split(normalizeNewlines(text), "\n") {
		if isSectionHeading(line) {
			flush()
			title = strings.TrimSpace(line[3:])
			body = body[:0]
			open = true
			continue
		}
		if !open {
			continue
		}
		if strings.HasPrefix(line, "### ") {
			line = line[1:]
		}
		body = append(body, line)
	}
	flush()

	return entries
}
