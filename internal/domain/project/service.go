package project

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/rpggio/statusboard/internal/domain/activity"
	"github.com/rpggio/statusboard/internal/markdown"
	"github.com/rpggio/statusboard/internal/repository"
	"github.com/rpggio/statusboard/internal/slug"
)

const tracerName = "github.com/rpggio/statusboard/internal/domain/project"

// DefaultConcurrency bounds parallel source fetches during ingestion.
const DefaultConcurrency = 4

// Options configures the engine.
type Options struct {
	// Sources are ingested by the primary pass, in order.
	Sources []Source
	// Details maps a record id to the repository holding its detail document.
	Details map[string]Descriptor
	// CommonAliases maps nicknames to record ids.
	CommonAliases map[string]string
	// Candidates are the detail document paths probed, in order.
	Candidates  []string
	RawBaseURL  string
	CatalogURL  string
	Concurrency int
	// SessionID scopes activity entries.
	SessionID string
}

// Service is the ingestion and resolution engine. It owns the authoritative
// record set, its legacy projection and the lookup index.
type Service struct {
	fetcher  Fetcher
	store    Store
	activity ActivityLogger
	opts     Options
	logger   *slog.Logger
	tracer   trace.Tracer

	// initMu serializes Initialize and Refresh.
	initMu sync.Mutex

	mu          sync.RWMutex
	records     map[string]*Record
	legacy      map[string]LegacyRecord
	index       *Index
	initialized bool
	version     uint64

	saveMu       sync.Mutex
	savedVersion uint64
}

// NewService creates a new engine. activityLog may be nil.
func NewService(fetcher Fetcher, store Store, activityLog ActivityLogger, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.CommonAliases == nil {
		opts.CommonAliases = DefaultCommonAliases()
	}
	if len(opts.Candidates) == 0 {
		opts.Candidates = DefaultCandidates
	}
	if opts.RawBaseURL == "" {
		opts.RawBaseURL = DefaultRawBaseURL
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Service{
		fetcher:  fetcher,
		store:    store,
		activity: activityLog,
		opts:     opts,
		logger:   logger,
		tracer:   otel.Tracer(tracerName),
		records:  map[string]*Record{},
		legacy:   map[string]LegacyRecord{},
		index:    BuildIndex(nil, nil),
	}
}

// Initialize loads the persisted record set, migrating it if needed, or
// ingests every source when nothing is persisted. Calling it again after
// success is a no-op.
func (s *Service) Initialize(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.mu.RLock()
	done := s.initialized
	s.mu.RUnlock()
	if done {
		return nil
	}

	runID := uuid.NewString()
	if records, ok := s.load(ctx, runID); ok {
		s.install(records)
		s.logger.Info("project data loaded from session", "projects", len(records), "run_id", runID)
		s.record(ctx, runID, "", activity.TypeSessionLoaded, fmt.Sprintf("loaded %d projects from session", len(records)))
		return nil
	}

	return s.ingestAndInstall(ctx, runID)
}

// Refresh clears both cache tiers and the persisted slot, then re-runs
// full ingestion.
func (s *Service) Refresh(ctx context.Context) error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	s.mu.Lock()
	s.records = map[string]*Record{}
	s.legacy = map[string]LegacyRecord{}
	s.index = BuildIndex(nil, nil)
	s.initialized = false
	s.version++
	s.mu.Unlock()

	if err := s.store.Delete(ctx, StoreKey); err != nil {
		s.logger.Warn("clearing persisted project data", "error", err)
	}

	runID := uuid.NewString()
	if err := s.ingestAndInstall(ctx, runID); err != nil {
		return err
	}
	s.record(ctx, runID, "", activity.TypeDataRefreshed, "project data refreshed")
	return nil
}

func (s *Service) ingestAndInstall(ctx context.Context, runID string) error {
	records, err := s.ingest(ctx, runID)
	if err != nil {
		return fmt.Errorf("ingesting projects: %w", err)
	}
	snap := s.install(records)
	s.persist(ctx, snap)
	s.logger.Info("project data ingested", "projects", len(records), "run_id", runID)
	return nil
}

// install swaps in a new record set and marks the engine initialized.
func (s *Service) install(records map[string]*Record) snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.rebuildLocked()
	s.initialized = true
	return s.snapshotLocked()
}

// load reads and migrates the persisted set. It reports false when nothing
// usable is persisted.
func (s *Service) load(ctx context.Context, runID string) (map[string]*Record, bool) {
	raw, err := s.store.Get(ctx, StoreKey)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("reading persisted project data", "error", err)
		}
		return nil, false
	}
	if raw == "" {
		return nil, false
	}

	var persisted map[string]*Record
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		s.logger.Warn("decoding persisted project data", "error", err)
		return nil, false
	}

	records, changed := Migrate(persisted)
	if changed {
		data, err := json.Marshal(records)
		if err != nil {
			s.logger.Warn("encoding migrated project data", "error", err)
		} else if err := s.store.Set(ctx, StoreKey, string(data)); err != nil {
			s.logger.Warn("saving migrated project data", "error", err)
		}
		s.logger.Info("session data migrated", "projects", len(records), "run_id", runID)
		s.record(ctx, runID, "", activity.TypeSessionMigrated, fmt.Sprintf("migrated %d persisted projects", len(records)))
	}
	return records, true
}

// ingest runs the primary pass: the catalog when configured and non-empty,
// otherwise one fetch per source. Results fold in source order so fetch
// completion order never changes the outcome.
func (s *Service) ingest(ctx context.Context, runID string) (map[string]*Record, error) {
	if records := s.ingestCatalog(ctx, runID); len(records) > 0 {
		return records, nil
	}

	results := make([]Record, len(s.opts.Sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i, src := range s.opts.Sources {
		g.Go(func() error {
			results[i] = s.ingestSource(gctx, runID, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make(map[string]*Record, len(results))
	for i := range results {
		rec := results[i]
		if rec.ID == "" {
			continue
		}
		if existing, ok := records[rec.ID]; ok {
			for _, alias := range rec.Aliases {
				existing.Aliases = addAlias(existing.Aliases, alias)
			}
			continue
		}
		records[rec.ID] = &rec
	}
	return records, nil
}

func (s *Service) ingestSource(ctx context.Context, runID string, src Source) Record {
	url := src.URL(s.opts.RawBaseURL, "")
	logger := s.logger.With("source", src.Name, "url", url, "run_id", runID)

	text, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		logger.Warn("fetching project document", "error", err)
		rec := Placeholder(src.Name)
		s.record(ctx, runID, rec.ID, activity.TypeIngestFailed, fmt.Sprintf("%s: %v", src.Name, err))
		return rec
	}

	rec := NewRecord(markdown.Parse(text, src.Name), text)
	if rec.ID == "" {
		rec.ID = slug.Make(src.Name)
	}
	if src.Name != rec.ID {
		rec.Aliases = addAlias(rec.Aliases, src.Name)
	}
	logger.Debug("project ingested", "project_id", rec.ID)
	s.record(ctx, runID, rec.ID, activity.TypeProjectIngested, fmt.Sprintf("%s -> %s", src.Name, rec.ID))
	return rec
}

func (s *Service) ingestCatalog(ctx context.Context, runID string) map[string]*Record {
	if s.opts.CatalogURL == "" {
		return nil
	}
	text, err := s.fetcher.Fetch(ctx, s.opts.CatalogURL)
	if err != nil {
		s.logger.Warn("fetching project catalog", "url", s.opts.CatalogURL, "error", err)
		return nil
	}

	records := map[string]*Record{}
	for _, entry := range markdown.SplitCatalog(text) {
		rec := NewRecord(markdown.Parse(entry.Document, entry.Title), entry.Document)
		if rec.ID == "" {
			continue
		}
		rec.Aliases = addAlias(rec.Aliases, entry.Title)
		records[rec.ID] = &rec
		s.record(ctx, runID, rec.ID, activity.TypeProjectIngested, "catalog: "+entry.Title)
	}
	return records
}

// EnsureDetails resolves query and, when the record still lacks details,
// fetches its detail document and merges it in. It returns nil for an
// unresolved query and the record unchanged when no document could be
// fetched. The only error is context cancellation.
func (s *Service) EnsureDetails(ctx context.Context, query string) (*Record, error) {
	ctx, span := s.tracer.Start(ctx, "project.EnsureDetails", trace.WithAttributes(attribute.String("project.query", query)))
	defer span.End()

	s.mu.RLock()
	id, ok := s.index.Resolve(query)
	var current Record
	if ok {
		if rec, found := s.records[id]; found {
			current = rec.Clone()
		} else {
			ok = false
		}
	}
	desc, hasDesc := s.opts.Details[id]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	span.SetAttributes(attribute.String("project.id", id))
	runID := uuid.NewString()

	if !NeedsDetails(current) {
		s.record(ctx, runID, id, activity.TypeDetailsSkipped, "details already loaded")
		return &current, nil
	}
	if !hasDesc {
		s.logger.Debug("no repository registered for project", "project_id", id)
		s.record(ctx, runID, id, activity.TypeDetailsUnavailable, "no repository registered")
		return &current, nil
	}

	update, source, found, err := s.fetchDetails(ctx, id, desc)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !found {
		s.logger.Warn("no detail document found", "project_id", id, "owner", desc.Owner, "repo", desc.Repo)
		s.record(ctx, runID, id, activity.TypeDetailsUnavailable, "no candidate document could be fetched")
		return &current, nil
	}

	s.mu.Lock()
	existing, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return &current, nil
	}
	merged := Merge(*existing, update)
	merged.DetailsLoaded = true
	merged.DetailsSource = &source
	s.records[id] = &merged
	s.rebuildLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.logger.Info("project details loaded", "project_id", id, "path", source.Path)
	s.record(ctx, runID, id, activity.TypeDetailsLoaded, "merged "+source.Path)

	out := merged.Clone()
	return &out, nil
}

// fetchDetails tries each candidate path in order. Any fetch failure moves
// on to the next candidate.
func (s *Service) fetchDetails(ctx context.Context, id string, desc Descriptor) (Update, DetailsSource, bool, error) {
	for _, path := range candidatePaths(s.opts.Candidates, desc) {
		url := desc.URL(s.opts.RawBaseURL, path)
		text, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Update{}, DetailsSource{}, false, ctxErr
			}
			s.logger.Debug("detail candidate unavailable", "project_id", id, "path", path, "url", url, "error", err)
			continue
		}

		digest := blake3.Sum256([]byte(text))
		source := DetailsSource{
			Path:     path,
			URL:      url,
			Digest:   hex.EncodeToString(digest[:]),
			LoadedAt: time.Now().UTC(),
		}
		return NewUpdate(markdown.Parse(text, ""), text), source, true, nil
	}
	return Update{}, DetailsSource{}, false, nil
}

// InvalidateCacheFor marks the resolved record as needing enrichment again.
// It reports whether query resolved.
func (s *Service) InvalidateCacheFor(ctx context.Context, query string) bool {
	s.mu.Lock()
	id, ok := s.index.Resolve(query)
	rec, found := s.records[id]
	if !ok || !found {
		s.mu.Unlock()
		return false
	}
	updated := rec.Clone()
	updated.DetailsLoaded = false
	updated.DetailsSource = nil
	s.records[id] = &updated
	s.rebuildLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(ctx, snap)
	s.logger.Info("project cache invalidated", "project_id", id)
	s.record(ctx, uuid.NewString(), id, activity.TypeCacheInvalidated, "details invalidated")
	return true
}

// Resolve maps a query to a record id.
func (s *Service) Resolve(query string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Resolve(query)
}

// Lookup resolves query to a record id, reporting ErrInvalidInput for a
// blank query, ErrNotInitialized before data is installed and
// ErrProjectNotFound on a miss.
func (s *Service) Lookup(query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrInvalidInput
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return "", ErrNotInitialized
	}
	id, ok := s.index.Resolve(query)
	if !ok {
		return "", fmt.Errorf("%q: %w", query, ErrProjectNotFound)
	}
	return id, nil
}

// Initialized reports whether the engine has data installed.
func (s *Service) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Project returns a copy of the structured record for query, or nil.
func (s *Service) Project(query string) *Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil
	}
	id, ok := s.index.Resolve(query)
	if !ok {
		return nil
	}
	rec, ok := s.records[id]
	if !ok {
		return nil
	}
	out := rec.Clone()
	return &out
}

// GetProjectData returns the legacy record for any resolvable query.
func (s *Service) GetProjectData(query string) *LegacyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil
	}
	id, ok := s.index.Resolve(query)
	if !ok {
		s.logger.Debug("no project matches query", "query", query, "known_ids", s.index.IDs())
		return nil
	}
	return s.legacyLocked(id)
}

// GetByID returns the legacy record cached under exactly id. Source names
// are cached keys too.
func (s *Service) GetByID(id string) *LegacyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil
	}
	return s.legacyLocked(id)
}

// GetByAlias returns the legacy record an exact alias points to.
func (s *Service) GetByAlias(alias string) *LegacyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil
	}
	id, ok := s.index.Alias(alias)
	if !ok {
		return nil
	}
	return s.legacyLocked(id)
}

// GetByTitle returns the legacy record with exactly title.
func (s *Service) GetByTitle(title string) *LegacyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return nil
	}
	id, ok := s.index.Title(title)
	if !ok {
		return nil
	}
	return s.legacyLocked(id)
}

// All returns every record in legacy shape, ordered by id.
func (s *Service) All() []LegacyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return []LegacyRecord{}
	}
	out := make([]LegacyRecord, 0, len(s.records))
	for _, id := range slices.Sorted(maps.Keys(s.records)) {
		out = append(out, ToLegacy(*s.records[id]))
	}
	return out
}

// Structured returns copies of every record, ordered by id.
func (s *Service) Structured() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return []Record{}
	}
	out := make([]Record, 0, len(s.records))
	for _, id := range slices.Sorted(maps.Keys(s.records)) {
		out = append(out, s.records[id].Clone())
	}
	return out
}

// Stats summarizes the engine's caches.
func (s *Service) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, titles, aliases := s.index.Sizes()
	return Stats{
		TotalProjects: len(s.records),
		HasData:       len(s.records) > 0,
		Initialized:   s.initialized,
		CacheSize:     len(s.legacy),
		IndexedIDs:    ids,
		IndexedTitles: titles,
		Aliases:       aliases,
	}
}

func (s *Service) legacyLocked(key string) *LegacyRecord {
	rec, ok := s.legacy[key]
	if !ok {
		return nil
	}
	out := rec.Clone()
	return &out
}

// rebuildLocked derives the index and legacy cache from s.records. Both are
// built fresh and swapped in. Caller holds s.mu for writing.
func (s *Service) rebuildLocked() {
	index := BuildIndex(s.records, s.opts.CommonAliases)
	legacy := make(map[string]LegacyRecord, len(s.records)+len(s.opts.Sources))
	for id, rec := range s.records {
		legacy[id] = ToLegacy(*rec)
	}
	for _, src := range s.opts.Sources {
		if _, taken := legacy[src.Name]; taken {
			continue
		}
		if id, ok := index.Resolve(src.Name); ok {
			legacy[src.Name] = legacy[id]
		}
	}
	s.index = index
	s.legacy = legacy
}

type snapshot struct {
	version uint64
	data    string
}

// snapshotLocked serializes the record set. Caller holds s.mu for writing.
func (s *Service) snapshotLocked() snapshot {
	s.version++
	data, err := json.Marshal(s.records)
	if err != nil {
		s.logger.Warn("encoding project data", "error", err)
		return snapshot{version: s.version}
	}
	return snapshot{version: s.version, data: string(data)}
}

// persist writes snap unless a newer snapshot was already written. Store
// failures are logged and swallowed; memory stays authoritative.
func (s *Service) persist(ctx context.Context, snap snapshot) {
	if snap.data == "" {
		return
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if snap.version <= s.savedVersion {
		return
	}
	if err := s.store.Set(ctx, StoreKey, snap.data); err != nil {
		s.logger.Warn("saving project data", "error", err)
		return
	}
	s.savedVersion = snap.version
}

func (s *Service) record(ctx context.Context, runID, projectID string, typ activity.ActivityType, summary string) {
	if s.activity == nil {
		return
	}
	entry := &activity.ActivityEntry{
		RunID:        runID,
		ProjectID:    projectID,
		ActivityType: typ,
		Summary:      summary,
	}
	if err := s.activity.LogActivity(ctx, s.opts.SessionID, entry); err != nil {
		s.logger.Warn("recording activity", "type", typ, "error", err)
	}
}
