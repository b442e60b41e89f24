package mcp

import (
	"time"

	"github.com/rpggio/statusboard/internal/domain/activity"
	"github.com/rpggio/statusboard/internal/domain/project"
)

type QueryParams struct {
	Query string `json:"query" jsonschema:"project id, alias or title"`
}

type ListProjectsParams struct{}

type RefreshParams struct{}

type StatsParams struct{}

type RecentActivityParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"only entries for this project id"`
	Type      string `json:"type,omitempty" jsonschema:"only entries of this activity type"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum entries to return"`
	Offset    int    `json:"offset,omitempty" jsonschema:"entries to skip"`
}

// ProjectSummary is a compact list entry.
type ProjectSummary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Status   string   `json:"status"`
	Progress int      `json:"progress"`
	Aliases  []string `json:"aliases"`
}

type ListProjectsResult struct {
	Projects []ProjectSummary `json:"projects"`
}

type StatusView struct {
	Phase    string `json:"phase"`
	Progress int    `json:"progress"`
	Detail   string `json:"detail,omitempty"`
	Stage    string `json:"stage,omitempty"`
}

type FeaturesView struct {
	Completed  []string `json:"completed"`
	InProgress []string `json:"in_progress"`
	Pending    []string `json:"pending"`
}

type DetailsSourceView struct {
	Path     string `json:"path"`
	URL      string `json:"url"`
	Digest   string `json:"digest"`
	LoadedAt string `json:"loaded_at"`
}

// ProjectView is the structured record as returned by tools.
type ProjectView struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Name          string             `json:"name"`
	Overview      string             `json:"overview"`
	Status        StatusView         `json:"status"`
	Features      FeaturesView       `json:"features"`
	Technical     []string           `json:"technical"`
	KeyFeatures   []string           `json:"key_features"`
	Aliases       []string           `json:"aliases"`
	LastUpdated   string             `json:"last_updated,omitempty"`
	DetailsLoaded bool               `json:"details_loaded"`
	DetailsSource *DetailsSourceView `json:"details_source,omitempty"`
}

type ResolveResult struct {
	Query string `json:"query"`
	ID    string `json:"id"`
}

type InvalidateResult struct {
	ID          string `json:"id"`
	Invalidated bool   `json:"invalidated"`
}

type StatsResult struct {
	TotalProjects int  `json:"total_projects"`
	HasData       bool `json:"has_data"`
	Initialized   bool `json:"initialized"`
	CacheSize     int  `json:"cache_size"`
	IndexedIDs    int  `json:"indexed_ids"`
	IndexedTitles int  `json:"indexed_titles"`
	Aliases       int  `json:"aliases"`
}

type ActivityView struct {
	ID        int64  `json:"id"`
	RunID     string `json:"run_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
	Type      string `json:"type"`
	Summary   string `json:"summary"`
	Details   string `json:"details,omitempty"`
	CreatedAt string `json:"created_at"`
}

type RecentActivityResult struct {
	Entries []ActivityView `json:"entries"`
}

func summaryFrom(r project.LegacyRecord) ProjectSummary {
	return ProjectSummary{
		ID:       r.ID,
		Title:    r.Title,
		Status:   string(r.Status),
		Progress: r.Progress,
		Aliases:  r.Aliases,
	}
}

func projectViewFrom(r *project.Record) ProjectView {
	rec := r.Clone()
	view := ProjectView{
		ID:       rec.ID,
		Title:    rec.Title,
		Name:     rec.Name,
		Overview: rec.Overview,
		Status: StatusView{
			Phase:    string(rec.Status.Phase),
			Progress: rec.Status.Progress,
			Detail:   rec.Status.Detail,
			Stage:    rec.Status.Stage,
		},
		Features: FeaturesView{
			Completed:  rec.Features.Completed,
			InProgress: rec.Features.InProgress,
			Pending:    rec.Features.Pending,
		},
		Technical:     rec.Technical,
		KeyFeatures:   rec.KeyFeatures,
		Aliases:       rec.Aliases,
		LastUpdated:   rec.LastUpdated,
		DetailsLoaded: rec.DetailsLoaded,
	}
	if rec.DetailsSource != nil {
		view.DetailsSource = &DetailsSourceView{
			Path:     rec.DetailsSource.Path,
			URL:      rec.DetailsSource.URL,
			Digest:   rec.DetailsSource.Digest,
			LoadedAt: rec.DetailsSource.LoadedAt.UTC().Format(time.RFC3339),
		}
	}
	return view
}

func statsFrom(s project.Stats) StatsResult {
	return StatsResult{
		TotalProjects: s.TotalProjects,
		HasData:       s.HasData,
		Initialized:   s.Initialized,
		CacheSize:     s.CacheSize,
		IndexedIDs:    s.IndexedIDs,
		IndexedTitles: s.IndexedTitles,
		Aliases:       s.Aliases,
	}
}

func activityViewFrom(e activity.ActivityEntry) ActivityView {
	return ActivityView{
		ID:        e.ID,
		RunID:     e.RunID,
		ProjectID: e.ProjectID,
		Type:      string(e.ActivityType),
		Summary:   e.Summary,
		Details:   e.Details,
		CreatedAt: e.CreatedAt.UTC().Format(time.RFC3339),
	}
}
