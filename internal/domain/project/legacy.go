package project

// LegacyTasks is the task breakdown of the legacy shape. It is always empty.
type LegacyTasks struct {
	Completed  []string `json:"completed"`
	InProgress []string `json:"inProgress"`
	Pending    []string `json:"pending"`
}

// LegacyRecord is the flat record shape read by older consumers.
type LegacyRecord struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Name               string         `json:"name"`
	Description        string         `json:"description"`
	Status             Phase          `json:"status"`
	Progress           int            `json:"progress"`
	CompletedFeatures  []string       `json:"completed_features"`
	InProgressFeatures []string       `json:"in_progress_features"`
	TodoFeatures       []string       `json:"todo_features"`
	TechnicalStack     []string       `json:"technical_stack"`
	KeyFeatures        []string       `json:"key_features"`
	LastUpdated        string         `json:"last_updated"`
	Metrics            map[string]any `json:"metrics"`
	Roadmap            []string       `json:"roadmap"`
	Files              []string       `json:"files"`
	Tasks              LegacyTasks    `json:"tasks"`
	Timeline           []string       `json:"timeline"`
	ActivityLog        []string       `json:"activity_log"`
	Aliases            []string       `json:"aliases"`
}

// ToLegacy projects r into the legacy shape. It shares no memory with r.
func ToLegacy(r Record) LegacyRecord {
	return LegacyRecord{
		ID:                 r.ID,
		Title:              r.Title,
		Name:               r.Name,
		Description:        r.Overview,
		Status:             r.Status.Phase,
		Progress:           r.Status.Progress,
		CompletedFeatures:  cloneList(r.Features.Completed),
		InProgressFeatures: cloneList(r.Features.InProgress),
		TodoFeatures:       cloneList(r.Features.Pending),
		TechnicalStack:     cloneList(r.Technical),
		KeyFeatures:        cloneList(r.KeyFeatures),
		LastUpdated:        r.LastUpdated,
		Metrics:            map[string]any{},
		Roadmap:            []string{},
		Files:              []string{},
		Tasks:              LegacyTasks{Completed: []string{}, InProgress: []string{}, Pending: []string{}},
		Timeline:           []string{},
		ActivityLog:        []string{},
		Aliases:            cloneList(r.Aliases),
	}
}

// Clone returns a deep copy of l.
func (l LegacyRecord) Clone() LegacyRecord {
	out := l
	out.CompletedFeatures = cloneList(l.CompletedFeatures)
	out.InProgressFeatures = cloneList(l.InProgressFeatures)
	out.TodoFeatures = cloneList(l.TodoFeatures)
	out.TechnicalStack = cloneList(l.TechnicalStack)
	out.KeyFeatures = cloneList(l.KeyFeatures)
	out.Aliases = cloneList(l.Aliases)
	out.Metrics = map[string]any{}
	out.Roadmap = []string{}
	out.Files = []string{}
	out.Tasks = LegacyTasks{Completed: []string{}, InProgress: []string{}, Pending: []string{}}
	out.Timeline = []string{}
	out.ActivityLog = []string{}
	return out
}
