package markdown

import (
	"regexp"
	"strings"
)

// Document holds the raw fields extracted from one project document.
// Nothing here is normalized; an absent field is "" or an empty list.
type Document struct {
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	Status      string   `json:"status"`
	Phase       string   `json:"phase"`
	Progress    *int     `json:"progress"`
	LastUpdated string   `json:"lastUpdated"`
	KeyFeatures []string `json:"keyFeatures"`
	Technical   []string `json:"technical"`
	Completed   []string `json:"completed"`
	InProgress  []string `json:"inProgress"`
	Pending     []string `json:"pending"`
}

// HasStatus reports whether the document said anything about status.
func (d Document) HasStatus() bool {
	return d.Status != "" || d.Phase != "" || d.Progress != nil
}

type listField struct {
	sections []string
	labels   []string
}

var (
	titlePattern        = regexp.MustCompile(`(?m)^[ \t]*#[ \t]+(\S[^\n]*?)[ \t]*$`)
	currentPhasePattern = regexp.MustCompile(`(?im)^[ \t]*[-*+•][ \t]*\*\*Current Phase:?\*\*[ \t]*:?[ \t]*(\S[^\n]*?)[ \t]*$`)
	progressBulletRegex = regexp.MustCompile(`(?im)^[ \t]*[-*+•][ \t]*\*\*Progress:?\*\*[ \t]*:?[ \t]*(-?\d+)[ \t]*%`)
	statusBulletPattern = regexp.MustCompile(`^(?:[-*+•]\s*)`)
	boldPattern         = regexp.MustCompile(`\*\*([^*]+)\*\*`)

	projectNameLabel = labelPattern("Project Name")
	overviewLabel    = labelPattern("Project Overview", "Overview")
	statusLabel      = labelPattern("Status", "Project Status")
	phaseLabel       = labelPattern("Phase", "Project Phase")
	progressLabel    = labelPattern("Progress", "Completion")
	lastUpdatedLabel = labelPattern("Last Updated", "Updated")

	overviewSections = []string{"overview", "project overview", "summary"}
	statusSections   = []string{"status", "project status"}

	keyFeaturesField = listField{
		sections: []string{"key features", "features"},
		labels:   []string{"Key Features", "Features"},
	}
	technicalField = listField{
		sections: []string{"technical stack", "technology stack", "tech stack", "technical", "technology", "stack"},
		labels:   []string{"Technical Stack", "Tech Stack"},
	}
	completedField = listField{
		sections: []string{"completed features", "completed"},
		labels:   []string{"Completed Features", "Completed"},
	}
	inProgressField = listField{
		sections: []string{"in progress", "in-progress", "in progress features"},
		labels:   []string{"In Progress"},
	}
	pendingField = listField{
		sections: []string{"pending tasks", "pending", "todo", "development todo"},
		labels:   []string{"Pending Tasks", "TODO"},
	}
)

// Parse extracts a Document from text. fallbackTitle is used when the text
// has neither a "# " heading nor a "Project Name:" label. Parse never fails.
func Parse(text, fallbackTitle string) Document {
	text = normalizeNewlines(text)
	sections := SplitSections(text)

	doc := Document{
		Title:       parseTitle(text, fallbackTitle),
		Overview:    parseOverview(text, sections),
		Phase:       findLabel(phaseLabel, text),
		LastUpdated: findLabel(lastUpdatedLabel, text),
		KeyFeatures: parseList(text, sections, keyFeaturesField),
		Technical:   parseList(text, sections, technicalField),
		Completed:   parseList(text, sections, completedField),
		InProgress:  parseList(text, sections, inProgressField),
		Pending:     parseList(text, sections, pendingField),
	}

	statusBody, hasStatusSection := sections.Lookup(statusSections...)
	doc.Status = parseStatus(text, statusBody, hasStatusSection)
	doc.Progress = ParseProgress(parseProgressText(text, statusBody, hasStatusSection))

	return doc
}

func parseTitle(text, fallback string) string {
	if m := titlePattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if name := findLabel(projectNameLabel, text); name != "" {
		return name
	}
	return fallback
}

// Overview prefers label form over section form.
func parseOverview(text string, sections Sections) string {
	if overview := findLabel(overviewLabel, text); overview != "" {
		return overview
	}
	body, _ := sections.Lookup(overviewSections...)
	return body
}

func parseStatus(text, body string, hasSection bool) string {
	if status := findLabel(statusLabel, text); status != "" {
		return status
	}
	if !hasSection {
		return ""
	}
	if m := currentPhasePattern.FindStringSubmatch(body); m != nil {
		return strings.TrimSpace(m[1])
	}
	return cleanStatusLine(firstLine(body))
}

func parseProgressText(text, statusBody string, hasSection bool) string {
	if progress := findLabel(progressLabel, text); progress != "" {
		return progress
	}
	if !hasSection {
		return ""
	}
	if m := progressBulletRegex.FindStringSubmatch(statusBody); m != nil {
		return m[1] + "%"
	}
	return ""
}

// Lists prefer section form and fall back to a labeled bullet run only when
// no matching section exists.
func parseList(text string, sections Sections, field listField) []string {
	if body, ok := sections.Lookup(field.sections...); ok {
		return SectionList(body)
	}
	return LabeledList(text, field.labels...)
}

func firstLine(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func cleanStatusLine(line string) string {
	line = statusBulletPattern.ReplaceAllString(strings.TrimSpace(line), "")
	line = boldPattern.ReplaceAllString(line, "$1")
	line = strings.TrimSpace(line)
	return strings.TrimSpace(strings.TrimSuffix(line, ":"))
}
