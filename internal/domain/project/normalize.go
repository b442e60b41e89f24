package project

import (
	"strings"

	"github.com/rpggio/statusboard/internal/markdown"
	"github.com/rpggio/statusboard/internal/slug"
)

// NormalizePhase maps free-form status text to a Phase by keyword.
func NormalizePhase(text string) Phase {
	s := strings.ToLower(strings.TrimSpace(text))
	switch {
	case s == "":
		return PhaseUnknown
	case strings.Contains(s, "active"), strings.Contains(s, "progress"), strings.Contains(s, "build"):
		return PhaseActive
	case strings.Contains(s, "paused"), strings.Contains(s, "hold"):
		return PhasePaused
	case strings.Contains(s, "done"), strings.Contains(s, "complete"):
		return PhaseComplete
	default:
		return PhaseUnknown
	}
}

// ClampProgress bounds progress to [0,100]; nil is 0.
func ClampProgress(progress *int) int {
	if progress == nil {
		return 0
	}
	return max(0, min(100, *progress))
}

// DisplayName picks the first non-blank of name, title and id.
func DisplayName(name, title, id string) string {
	for _, candidate := range []string{name, title, id} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return UntitledProject
}

// NewRecord builds a normalized record from a parsed document. raw is the
// document text, used for the overview fallback. The id is the slug of the
// title.
func NewRecord(doc markdown.Document, raw string) Record {
	id := slug.Make(doc.Title)
	return Record{
		ID:       id,
		Title:    doc.Title,
		Name:     DisplayName("", doc.Title, id),
		Overview: overviewOrSentinel(doc, raw),
		Status:   statusFor(doc),
		Features: Features{
			Completed:  cloneList(doc.Completed),
			InProgress: cloneList(doc.InProgress),
			Pending:    cloneList(doc.Pending),
		},
		Technical:   cloneList(doc.Technical),
		KeyFeatures: cloneList(doc.KeyFeatures),
		Aliases:     []string{},
		LastUpdated: doc.LastUpdated,
	}
}

// NewUpdate normalizes a parsed detail document into merge input. Status is
// nil when the document said nothing about status.
func NewUpdate(doc markdown.Document, raw string) Update {
	u := Update{
		Title:    doc.Title,
		Name:     doc.Title,
		Overview: overviewOrSentinel(doc, raw),
		Features: Features{
			Completed:  cloneList(doc.Completed),
			InProgress: cloneList(doc.InProgress),
			Pending:    cloneList(doc.Pending),
		},
		Technical:   cloneList(doc.Technical),
		KeyFeatures: cloneList(doc.KeyFeatures),
		LastUpdated: doc.LastUpdated,
	}
	if doc.HasStatus() {
		status := statusFor(doc)
		u.Status = &status
	}
	return u
}

// Placeholder stands in for a source whose document could not be fetched,
// so enrichment can retry it later.
func Placeholder(name string) Record {
	id := slug.Make(name)
	rec := Record{
		ID:          id,
		Title:       name,
		Name:        DisplayName(name, name, id),
		Overview:    OverviewUnavailable,
		Status:      Status{Phase: PhaseUnknown},
		Features:    Features{Completed: []string{}, InProgress: []string{}, Pending: []string{}},
		Technical:   []string{},
		KeyFeatures: []string{},
		Aliases:     []string{},
	}
	if name != id {
		rec.Aliases = addAlias(rec.Aliases, name)
	}
	return rec
}

func statusFor(doc markdown.Document) Status {
	return Status{
		Phase:    NormalizePhase(doc.Status),
		Progress: ClampProgress(doc.Progress),
		Detail:   doc.Status,
		Stage:    doc.Phase,
	}
}

func overviewOrSentinel(doc markdown.Document, raw string) string {
	if overview := strings.TrimSpace(doc.Overview); overview != "" {
		return overview
	}
	if paragraph := markdown.FirstParagraph(raw); paragraph != "" {
		return paragraph
	}
	return OverviewUnavailable
}
