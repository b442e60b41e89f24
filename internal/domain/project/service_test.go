package project_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rpggio/statusboard/internal/domain/activity"
	"github.com/rpggio/statusboard/internal/domain/project"
	"github.com/rpggio/statusboard/internal/repository"
	"github.com/rpggio/statusboard/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	rawBase   = "https://raw.example.test"
	diyID     = "at-home-diy-project-statistics-status"
	diyURL    = rawBase + "/Anickzs/DIYapp/main/ProjectDetails.md"
	diyLower  = rawBase + "/Anickzs/DIYapp/main/project_details.md"
	blaURL    = rawBase + "/Anickzs/BusinessLoclAi/main/ProjectDetails.md"
	catalogAt = rawBase + "/catalog/PROJECTS.md"
)

const diyDoc = `# At Home DIY Project Statistics & Status

## Project Overview
Plan and track DIY projects at home.

## Project Status
- **Current Phase**: Active build
- **Progress**: 65%

## Completed Features
- Project planner
- Material calculator

## Pending Tasks
- Offline sync
`

type fakeFetcher struct {
	mu    sync.Mutex
	docs  map[string]string
	calls map[string]int
}

func newFakeFetcher(docs map[string]string) *fakeFetcher {
	return &fakeFetcher{docs: docs, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	doc, ok := f.docs[url]
	if !ok {
		return "", fmt.Errorf("fetching %s: %w", url, repository.ErrNotFound)
	}
	return doc, nil
}

func (f *fakeFetcher) set(url, doc string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[url] = doc
}

func (f *fakeFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

type memStore struct {
	mu     sync.Mutex
	values map[string]string
	sets   int
	fail   error
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return "", s.fail
	}
	v, ok := s.values[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.values[key] = value
	s.sets++
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	delete(s.values, key)
	return nil
}

func (s *memStore) persisted(t *testing.T) map[string]*project.Record {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.values[project.StoreKey]
	require.True(t, ok, "nothing persisted")
	var out map[string]*project.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func testOptions() project.Options {
	return project.Options{
		Sources: []project.Source{
			{Name: "DIYapp", Descriptor: project.Descriptor{Owner: "Anickzs", Repo: "DIYapp", Branch: "main", Path: "ProjectDetails.md"}},
			{Name: "BusinessLoclAi", Descriptor: project.Descriptor{Owner: "Anickzs", Repo: "BusinessLoclAi", Branch: "main", Path: "ProjectDetails.md"}},
		},
		Details: map[string]project.Descriptor{
			diyID: {Owner: "Anickzs", Repo: "DIYapp"},
		},
		RawBaseURL: rawBase,
		SessionID:  "session-1",
	}
}

func newTestService(t *testing.T, fetcher project.Fetcher, store project.Store) *project.Service {
	t.Helper()
	return project.NewService(fetcher, store, nil, testOptions(), nil)
}

func TestService_InitializeIngestsSources(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher(map[string]string{diyURL: diyDoc})
	store := newMemStore()
	svc := newTestService(t, fetcher, store)

	require.Nil(t, svc.GetProjectData(diyID))
	require.NoError(t, svc.Initialize(ctx))
	require.True(t, svc.Initialized())

	diy := svc.Project(diyID)
	require.NotNil(t, diy)
	require.Equal(t, "Plan and track DIY projects at home.", diy.Overview)
	require.Equal(t, project.Status{Phase: project.PhaseActive, Progress: 65, Detail: "Active build"}, diy.Status)
	require.Equal(t, []string{"Project planner", "Material calculator"}, diy.Features.Completed)
	require.Equal(t, []string{"DIYapp"}, diy.Aliases)
	require.False(t, diy.DetailsLoaded)

	// Failed source becomes a retryable placeholder.
	bla := svc.Project("BusinessLoclAi")
	require.NotNil(t, bla)
	require.Equal(t, "businessloclai", bla.ID)
	require.Equal(t, project.OverviewUnavailable, bla.Overview)

	for _, query := range []string{diyID, "diyapp", "DIYapp", "At Home DIY Project Statistics & Status"} {
		id, ok := svc.Resolve(query)
		require.True(t, ok, query)
		require.Equal(t, diyID, id, query)
	}
	_, ok := svc.Resolve("businesslocalai")
	require.False(t, ok)

	require.NotNil(t, svc.GetByID("DIYapp"))
	require.Equal(t, diyID, svc.GetByID("DIYapp").ID)
	require.NotNil(t, svc.GetByAlias("diyapp"))
	require.Nil(t, svc.GetByAlias("DIYAPP"))
	require.NotNil(t, svc.GetByTitle("At Home DIY Project Statistics & Status"))
	require.Nil(t, svc.GetByTitle("at home diy project statistics & status"))

	all := svc.All()
	require.Len(t, all, 2)
	require.Equal(t, diyID, all[0].ID)
	require.Len(t, svc.Structured(), 2)

	persisted := store.persisted(t)
	require.Contains(t, persisted, diyID)
	require.Contains(t, persisted, "businessloclai")

	stats := svc.Stats()
	require.Equal(t, 2, stats.TotalProjects)
	require.True(t, stats.HasData)
	require.True(t, stats.Initialized)
	require.Equal(t, 4, stats.CacheSize)

	// A second Initialize does nothing.
	require.NoError(t, svc.Initialize(ctx))
	require.Equal(t, 1, fetcher.count(diyURL))
}

func TestService_InitializeLoadsAndMigratesSession(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher(map[string]string{})
	store := newMemStore()
	legacySet := `{"DIYapp":{"title":"At Home DIY","overview":"Old overview","status":{"phase":"Active","progress":10},` +
		`"features":{"completed":["Planner"],"inProgress":[],"pending":[]},"technical":[],"keyFeatures":[]}}`
	require.NoError(t, store.Set(ctx, project.StoreKey, legacySet))

	svc := newTestService(t, fetcher, store)
	require.NoError(t, svc.Initialize(ctx))
	require.Empty(t, fetcher.calls)

	id, ok := svc.Resolve("DIYapp")
	require.True(t, ok)
	require.Equal(t, "at-home-diy", id)
	require.Equal(t, "Old overview", svc.GetByID("DIYapp").Description)

	persisted := store.persisted(t)
	require.Len(t, persisted, 1)
	rec := persisted["at-home-diy"]
	require.NotNil(t, rec)
	require.Equal(t, "at-home-diy", rec.ID)
	require.Equal(t, []string{"DIYapp"}, rec.Aliases)

	// Loading the migrated set again changes nothing.
	sets := store.sets
	again := newTestService(t, fetcher, store)
	require.NoError(t, again.Initialize(ctx))
	require.Equal(t, sets, store.sets)
	require.Equal(t, []string{"DIYapp"}, again.Project("at-home-diy").Aliases)
}

func TestService_EnsureDetailsMergesFirstAvailableCandidate(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher(map[string]string{diyURL: diyDoc})
	store := newMemStore()
	svc := newTestService(t, fetcher, store)
	require.NoError(t, svc.Initialize(ctx))

	fetcher.set(diyURL, diyDoc+"\n## In Progress\n- Budget reports\n")

	rec, err := svc.EnsureDetails(ctx, "diyapp")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.True(t, rec.DetailsLoaded)
	require.NotNil(t, rec.DetailsSource)
	require.Equal(t, "ProjectDetails.md", rec.DetailsSource.Path)
	require.Equal(t, diyURL, rec.DetailsSource.URL)
	require.Len(t, rec.DetailsSource.Digest, 64)
	require.Equal(t, []string{"Budget reports"}, rec.Features.InProgress)
	require.Equal(t, []string{"Project planner", "Material calculator"}, rec.Features.Completed)

	require.Equal(t, 1, fetcher.count(diyLower))
	require.True(t, store.persisted(t)[diyID].DetailsLoaded)
	require.Equal(t, []string{"Budget reports"}, svc.GetByID("DIYapp").InProgressFeatures)
}

func TestService_EnsureDetailsWithoutDescriptor(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher(map[string]string{diyURL: diyDoc})
	svc := newTestService(t, fetcher, newMemStore())
	require.NoError(t, svc.Initialize(ctx))

	before := svc.Project("businessloclai")
	rec, err := svc.EnsureDetails(ctx, "businessloclai")
	require.NoError(t, err)
	require.Equal(t, before, rec)
	require.False(t, rec.DetailsLoaded)
	require.False(t, svc.Project("businessloclai").DetailsLoaded)
}

func TestService_EnsureDetailsUnresolved(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeFetcher(map[string]string{}), newMemStore())
	require.NoError(t, svc.Initialize(ctx))

	rec, err := svc.EnsureDetails(ctx, "no-such-project")
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestService_EnsureDetailsAllCandidatesFail(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher(map[string]string{diyURL: diyDoc})
	svc := newTestService(t, fetcher, newMemStore())
	require.NoError(t, svc.Initialize(ctx))

	fetcher.mu.Lock()
	delete(fetcher.docs, diyURL)
	fetcher.mu.Unlock()

	before := svc.Project(diyID)
	rec, err := svc.EnsureDetails(ctx, diyID)
	require.NoError(t, err)
	require.Equal(t, before, rec)
	require.False(t, svc.Project(diyID).DetailsLoaded)
}

func TestService_InvalidateThenEnsureRefetches(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher(map[string]string{diyURL: diyDoc})
	store := newMemStore()
	svc := newTestService(t, fetcher, store)
	require.NoError(t, svc.Initialize(ctx))

	_, err := svc.EnsureDetails(ctx, diyID)
	require.NoError(t, err)
	require.Equal(t, 2, fetcher.count(diyURL))

	// Already enriched: no fetch.
	rec, err := svc.EnsureDetails(ctx, diyID)
	require.NoError(t, err)
	require.True(t, rec.DetailsLoaded)
	require.Equal(t, 2, fetcher.count(diyURL))

	require.True(t, svc.InvalidateCacheFor(ctx, "DIYapp"))
	invalidated := svc.Project(diyID)
	require.False(t, invalidated.DetailsLoaded)
	require.Nil(t, invalidated.DetailsSource)
	require.Equal(t, "Plan and track DIY projects at home.", invalidated.Overview)
	require.True(t, project.NeedsDetails(*invalidated))
	require.False(t, store.persisted(t)[diyID].DetailsLoaded)

	rec, err = svc.EnsureDetails(ctx, diyID)
	require.NoError(t, err)
	require.True(t, rec.DetailsLoaded)
	require.Equal(t, 3, fetcher.count(diyURL))

	require.False(t, svc.InvalidateCacheFor(ctx, "unknown"))
}

func TestService_ConcurrentEnsureDetailsConverges(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher(map[string]string{diyURL: diyDoc})
	store := newMemStore()
	svc := newTestService(t, fetcher, store)
	require.NoError(t, svc.Initialize(ctx))

	var wg sync.WaitGroup
	results := make([]*project.Record, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.EnsureDetails(ctx, "diyapp")
		}()
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		require.NotNil(t, results[i])
		require.Equal(t, diyID, results[i].ID)
	}

	final := svc.Project(diyID)
	require.True(t, final.DetailsLoaded)
	require.Equal(t, []string{"Project planner", "Material calculator"}, final.Features.Completed)
	require.Equal(t, []string{"DIYapp"}, final.Aliases)
	require.True(t, store.persisted(t)[diyID].DetailsLoaded)
}

func TestService_EnsureDetailsCancelled(t *testing.T) {
	fetcher := newFakeFetcher(map[string]string{diyURL: diyDoc})
	svc := newTestService(t, fetcher, newMemStore())
	require.NoError(t, svc.Initialize(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := svc.EnsureDetails(ctx, diyID)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, rec)
	require.False(t, svc.Project(diyID).DetailsLoaded)
}

func TestService_StoreFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher(map[string]string{diyURL: diyDoc})
	store := newMemStore()
	store.fail = errors.New("quota exceeded")
	svc := newTestService(t, fetcher, store)

	require.NoError(t, svc.Initialize(ctx))
	require.NotNil(t, svc.Project(diyID))

	rec, err := svc.EnsureDetails(ctx, diyID)
	require.NoError(t, err)
	require.True(t, rec.DetailsLoaded)
	require.True(t, svc.InvalidateCacheFor(ctx, diyID))
	require.NoError(t, svc.Refresh(ctx))
	require.NotNil(t, svc.Project(diyID))
}

func TestService_RefreshReingests(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher(map[string]string{diyURL: diyDoc})
	store := newMemStore()
	svc := newTestService(t, fetcher, store)
	require.NoError(t, svc.Initialize(ctx))
	_, err := svc.EnsureDetails(ctx, diyID)
	require.NoError(t, err)

	fetcher.set(blaURL, "# Business Local AI\n\nStatus: On hold\n")
	require.NoError(t, svc.Refresh(ctx))

	require.False(t, svc.Project(diyID).DetailsLoaded)
	bla := svc.Project("BusinessLoclAi")
	require.NotNil(t, bla)
	require.Equal(t, "business-local-ai", bla.ID)
	require.Equal(t, project.PhasePaused, bla.Status.Phase)
	require.Nil(t, svc.Project("businessloclai"))

	persisted := store.persisted(t)
	require.Contains(t, persisted, "business-local-ai")
	require.NotContains(t, persisted, "businessloclai")
	require.False(t, persisted[diyID].DetailsLoaded)
}

func TestService_CatalogIngestion(t *testing.T) {
	ctx := context.Background()
	catalog := "# Projects\n\n## Alpha Tracker\n### Overview\nAlpha overview.\n\n## Beta Board\nStatus: Done\n"
	fetcher := newFakeFetcher(map[string]string{catalogAt: catalog, diyURL: diyDoc})
	opts := testOptions()
	opts.CatalogURL = catalogAt
	svc := project.NewService(fetcher, newMemStore(), nil, opts, nil)

	require.NoError(t, svc.Initialize(ctx))
	require.Equal(t, 0, fetcher.count(diyURL))

	alpha := svc.Project("Alpha Tracker")
	require.NotNil(t, alpha)
	require.Equal(t, "alpha-tracker", alpha.ID)
	require.Equal(t, "Alpha overview.", alpha.Overview)
	require.Equal(t, []string{"Alpha Tracker"}, alpha.Aliases)

	beta := svc.Project("beta-board")
	require.NotNil(t, beta)
	require.Equal(t, project.PhaseComplete, beta.Status.Phase)
}

func TestService_RecordsActivity(t *testing.T) {
	ctx := context.Background()
	fetcher := newFakeFetcher(map[string]string{diyURL: diyDoc})
	activityLog := &mocks.ActivityLogger{}
	activityLog.On("LogActivity", mock.Anything, "session-1", mock.Anything).Return(nil)

	svc := project.NewService(fetcher, newMemStore(), activityLog, testOptions(), nil)
	require.NoError(t, svc.Initialize(ctx))
	_, err := svc.EnsureDetails(ctx, diyID)
	require.NoError(t, err)

	ofType := func(typ activity.ActivityType) any {
		return mock.MatchedBy(func(e *activity.ActivityEntry) bool { return e.ActivityType == typ })
	}
	activityLog.AssertCalled(t, "LogActivity", mock.Anything, "session-1", ofType(activity.TypeProjectIngested))
	activityLog.AssertCalled(t, "LogActivity", mock.Anything, "session-1", ofType(activity.TypeIngestFailed))
	activityLog.AssertCalled(t, "LogActivity", mock.Anything, "session-1", ofType(activity.TypeDetailsLoaded))
}

func TestService_LookupsBeforeInitialize(t *testing.T) {
	svc := newTestService(t, newFakeFetcher(map[string]string{}), newMemStore())

	require.Nil(t, svc.Project(diyID))
	require.Nil(t, svc.GetByID(diyID))
	require.Empty(t, svc.All())
	require.Empty(t, svc.Structured())
	require.False(t, svc.Stats().Initialized)
}

func TestService_Lookup(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, newFakeFetcher(map[string]string{diyURL: diyDoc}), newMemStore())

	_, err := svc.Lookup("DIYapp")
	require.ErrorIs(t, err, project.ErrNotInitialized)

	require.NoError(t, svc.Initialize(ctx))

	id, err := svc.Lookup("DIYapp")
	require.NoError(t, err)
	require.Equal(t, diyID, id)

	_, err = svc.Lookup("   ")
	require.ErrorIs(t, err, project.ErrInvalidInput)

	_, err = svc.Lookup("no-such-project")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

const blaDoc = `# BusinessLocalAI Project Details

## Overview
Local AI assistants for small businesses.

## Status
Paused
`

// gatedFetcher holds fetches of blocked until release has been returned,
// forcing a chosen completion order.
type gatedFetcher struct {
	docs     map[string]string
	blocked  string
	release  string
	released chan struct{}
	once     sync.Once
}

func newGatedFetcher(docs map[string]string, blocked, release string) *gatedFetcher {
	return &gatedFetcher{docs: docs, blocked: blocked, release: release, released: make(chan struct{})}
}

func (f *gatedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if url == f.blocked {
		select {
		case <-f.released:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if url == f.release {
		defer f.once.Do(func() { close(f.released) })
	}
	doc, ok := f.docs[url]
	if !ok {
		return "", fmt.Errorf("fetching %s: %w", url, repository.ErrNotFound)
	}
	return doc, nil
}

func TestService_IngestIndependentOfCompletionOrder(t *testing.T) {
	docs := map[string]string{diyURL: diyDoc, blaURL: blaDoc}
	queries := []string{diyID, "DIYapp", "diyapp", "businesslocalai-project-details", "BusinessLoclAi", "businesslocalai"}

	run := func(blocked, release string) ([]project.Record, []string, string) {
		store := newMemStore()
		svc := newTestService(t, newGatedFetcher(docs, blocked, release), store)
		require.NoError(t, svc.Initialize(context.Background()))

		resolved := make([]string, 0, len(queries))
		for _, q := range queries {
			id, _ := svc.Resolve(q)
			resolved = append(resolved, id)
		}
		store.mu.Lock()
		defer store.mu.Unlock()
		return svc.Structured(), resolved, store.values[project.StoreKey]
	}

	diyLast, resolvedA, persistedA := run(diyURL, blaURL)
	blaLast, resolvedB, persistedB := run(blaURL, diyURL)

	require.Len(t, diyLast, 2)
	require.Equal(t, diyLast, blaLast)
	require.Equal(t, resolvedA, resolvedB)
	require.Equal(t, []string{diyID, diyID, diyID, "businesslocalai-project-details", "businesslocalai-project-details", "businesslocalai-project-details"}, resolvedA)
	require.NotEmpty(t, persistedA)
	require.JSONEq(t, persistedA, persistedB)
}

func TestService_IngestSharedSlugFirstSourceWins(t *testing.T) {
	const (
		alphaURL = rawBase + "/acme/alpha/main/README.md"
		betaURL  = rawBase + "/acme/beta/main/README.md"
	)
	docs := map[string]string{
		alphaURL: "# Shared Tracker\n\n## Overview\nFrom alpha.\n",
		betaURL:  "# Shared Tracker!\n\n## Overview\nFrom beta.\n",
	}
	opts := project.Options{
		Sources: []project.Source{
			{Name: "Alpha", Descriptor: project.Descriptor{Owner: "acme", Repo: "alpha", Path: "README.md"}},
			{Name: "Beta", Descriptor: project.Descriptor{Owner: "acme", Repo: "beta", Path: "README.md"}},
		},
		RawBaseURL:    rawBase,
		CommonAliases: map[string]string{},
	}

	// Alpha finishes last but still wins.
	svc := project.NewService(newGatedFetcher(docs, alphaURL, betaURL), newMemStore(), nil, opts, nil)
	require.NoError(t, svc.Initialize(context.Background()))

	records := svc.Structured()
	require.Len(t, records, 1)
	rec := records[0]
	require.Equal(t, "shared-tracker", rec.ID)
	require.Equal(t, "Shared Tracker", rec.Title)
	require.Equal(t, "From alpha.", rec.Overview)
	require.Equal(t, []string{"Alpha", "Beta"}, rec.Aliases)

	for _, q := range []string{"Alpha", "Beta", "Shared Tracker", "shared tracker"} {
		id, ok := svc.Resolve(q)
		require.True(t, ok, q)
		require.Equal(t, "shared-tracker", id, q)
	}
}

type failingCandidateFetcher struct {
	*fakeFetcher
	fail map[string]error
}

func (f failingCandidateFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err, ok := f.fail[url]; ok {
		f.fakeFetcher.mu.Lock()
		f.fakeFetcher.calls[url]++
		f.fakeFetcher.mu.Unlock()
		return "", err
	}
	return f.fakeFetcher.Fetch(ctx, url)
}

func TestService_EnsureDetailsSkipsRejectedCandidate(t *testing.T) {
	ctx := context.Background()
	base := newFakeFetcher(map[string]string{diyURL: diyDoc, diyLower: "# Too big"})
	fetcher := failingCandidateFetcher{
		fakeFetcher: base,
		fail:        map[string]error{diyLower: errors.New("reading: document too large")},
	}
	svc := newTestService(t, fetcher, newMemStore())
	require.NoError(t, svc.Initialize(ctx))

	rec, err := svc.EnsureDetails(ctx, diyID)
	require.NoError(t, err)
	require.True(t, rec.DetailsLoaded)
	require.Equal(t, "ProjectDetails.md", rec.DetailsSource.Path)
	require.Equal(t, 1, base.count(diyLower))
}
