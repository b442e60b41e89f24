package activity

import "time"

// ActivityType represents the type of engine event
type ActivityType string

const (
	TypeProjectIngested    ActivityType = "project_ingested"
	TypeIngestFailed       ActivityType = "ingest_failed"
	TypeSessionLoaded      ActivityType = "session_loaded"
	TypeSessionMigrated    ActivityType = "session_migrated"
	TypeDetailsLoaded      ActivityType = "details_loaded"
	TypeDetailsUnavailable ActivityType = "details_unavailable"
	TypeDetailsSkipped     ActivityType = "details_skipped"
	TypeCacheInvalidated   ActivityType = "cache_invalidated"
	TypeDataRefreshed      ActivityType = "data_refreshed"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	SessionID    string       `json:"session_id"`
	RunID        string       `json:"run_id,omitempty"`
	ProjectID    string       `json:"project_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"` // JSON string
	CreatedAt    time.Time    `json:"created_at"`
}
