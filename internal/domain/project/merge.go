package project

// Update is the normalized content of a detail document, ready to merge.
type Update struct {
	Title       string
	Name        string
	Overview    string
	Status      *Status
	Features    Features
	Technical   []string
	KeyFeatures []string
	LastUpdated string
}

// Merge folds u into existing without replacing populated data with
// emptiness. Title and name only fill blanks; id, aliases and the details
// markers are left alone.
func Merge(existing Record, u Update) Record {
	merged := existing.Clone()

	if merged.Title == "" && u.Title != "" {
		merged.Title = u.Title
	}
	if merged.Name == "" && u.Name != "" {
		merged.Name = u.Name
	}
	if u.Overview != "" && u.Overview != OverviewUnavailable {
		merged.Overview = u.Overview
	}
	if u.Status != nil {
		merged.Status = *u.Status
	}
	if len(u.Features.Completed) > 0 {
		merged.Features.Completed = cloneList(u.Features.Completed)
	}
	if len(u.Features.InProgress) > 0 {
		merged.Features.InProgress = cloneList(u.Features.InProgress)
	}
	if len(u.Features.Pending) > 0 {
		merged.Features.Pending = cloneList(u.Features.Pending)
	}
	if len(u.Technical) > 0 {
		merged.Technical = cloneList(u.Technical)
	}
	if len(u.KeyFeatures) > 0 {
		merged.KeyFeatures = cloneList(u.KeyFeatures)
	}
	if u.LastUpdated != "" {
		merged.LastUpdated = u.LastUpdated
	}

	return merged
}

// NeedsDetails reports whether r should be enriched: it never was, its
// overview is still the sentinel, or it has no features at all.
func NeedsDetails(r Record) bool {
	return !r.DetailsLoaded || r.Overview == OverviewUnavailable || r.Features.Empty()
}
