package project

import (
	"slices"
	"time"
)

const (
	// StoreKey is the persisted-store slot holding the whole record set.
	StoreKey = "githubProjectData"
	// OverviewUnavailable marks a record whose overview was never parsed.
	OverviewUnavailable = "Project overview not available"
	// UntitledProject is the display name of a record with no name, title or id.
	UntitledProject = "Untitled Project"
)

// Phase is the normalized lifecycle phase of a project.
type Phase string

const (
	PhaseActive   Phase = "Active"
	PhasePaused   Phase = "Paused"
	PhaseComplete Phase = "Complete"
	PhaseUnknown  Phase = "Unknown"
)

// Status is the normalized status of a project.
type Status struct {
	Phase    Phase `json:"phase"`
	Progress int   `json:"progress"`
	// Detail is the status text as written, e.g. "Planning".
	Detail string `json:"detail,omitempty"`
	// Stage is the raw "Phase:" label, e.g. "Development".
	Stage string `json:"stage,omitempty"`
}

// Features groups the three feature lists of a project.
type Features struct {
	Completed  []string `json:"completed"`
	InProgress []string `json:"inProgress"`
	Pending    []string `json:"pending"`
}

// Empty reports whether all three lists are empty.
func (f Features) Empty() bool {
	return len(f.Completed) == 0 && len(f.InProgress) == 0 && len(f.Pending) == 0
}

// DetailsSource records which document the last enrichment merged.
type DetailsSource struct {
	Path     string    `json:"path"`
	URL      string    `json:"url"`
	Digest   string    `json:"digest"`
	LoadedAt time.Time `json:"loadedAt"`
}

// Record is the canonical representation of one tracked project.
type Record struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Name          string         `json:"name"`
	Overview      string         `json:"overview"`
	Status        Status         `json:"status"`
	Features      Features       `json:"features"`
	Technical     []string       `json:"technical"`
	KeyFeatures   []string       `json:"keyFeatures"`
	Aliases       []string       `json:"aliases"`
	LastUpdated   string         `json:"lastUpdated,omitempty"`
	DetailsLoaded bool           `json:"_detailsLoaded,omitempty"`
	DetailsSource *DetailsSource `json:"_detailsSource,omitempty"`
}

// Clone returns a deep copy of r. Nil lists come back empty.
func (r Record) Clone() Record {
	out := r
	out.Features = Features{
		Completed:  cloneList(r.Features.Completed),
		InProgress: cloneList(r.Features.InProgress),
		Pending:    cloneList(r.Features.Pending),
	}
	out.Technical = cloneList(r.Technical)
	out.KeyFeatures = cloneList(r.KeyFeatures)
	out.Aliases = cloneList(r.Aliases)
	if r.DetailsSource != nil {
		src := *r.DetailsSource
		out.DetailsSource = &src
	}
	return out
}

// HasAlias reports whether alias is already recorded.
func (r Record) HasAlias(alias string) bool {
	return slices.Contains(r.Aliases, alias)
}

// Stats summarizes the engine's caches.
type Stats struct {
	TotalProjects int  `json:"totalProjects"`
	HasData       bool `json:"hasData"`
	Initialized   bool `json:"initialized"`
	CacheSize     int  `json:"cacheSize"`
	IndexedIDs    int  `json:"indexedIds"`
	IndexedTitles int  `json:"indexedTitles"`
	Aliases       int  `json:"aliases"`
}

func cloneList(items []string) []string {
	if items == nil {
		return []string{}
	}
	return slices.Clone(items)
}

func addAlias(aliases []string, alias string) []string {
	if alias == "" || slices.Contains(aliases, alias) {
		return aliases
	}
	return append(aliases, alias)
}
