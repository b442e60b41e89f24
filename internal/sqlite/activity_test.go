package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/statusboard/internal/domain/activity"
	"github.com/stretchr/testify/require"
)

var _ activity.Repository = (*ActivityRepository)(nil)

func TestActivityRepository_LogList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entry1 := &activity.ActivityEntry{
		RunID:        "run-1",
		ProjectID:    "diyapp",
		ActivityType: activity.TypeProjectIngested,
		Summary:      "Ingested DIYapp",
		Details:      `{"source":"DIYapp"}`,
		CreatedAt:    base,
	}
	entry2 := &activity.ActivityEntry{
		RunID:        "run-1",
		ActivityType: activity.TypeDataRefreshed,
		Summary:      "Refreshed",
		CreatedAt:    base.Add(time.Minute),
	}

	require.NoError(t, repo.Log(ctx, "session-1", entry1))
	require.NoError(t, repo.Log(ctx, "session-1", entry2))
	require.NotZero(t, entry1.ID)
	require.Equal(t, "session-1", entry1.SessionID)

	entries, err := repo.List(ctx, "session-1", activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, activity.TypeDataRefreshed, entries[0].ActivityType)
	require.Empty(t, entries[0].ProjectID)
	require.Equal(t, activity.TypeProjectIngested, entries[1].ActivityType)
	require.Equal(t, "diyapp", entries[1].ProjectID)
	require.Equal(t, `{"source":"DIYapp"}`, entries[1].Details)
	require.Equal(t, "run-1", entries[1].RunID)
}

func TestActivityRepository_FiltersAndSessionIsolation(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	require.NoError(t, repo.Log(ctx, "session-1", &activity.ActivityEntry{
		RunID: "run-1", ProjectID: "a", ActivityType: activity.TypeDetailsLoaded, Summary: "a loaded",
	}))
	require.NoError(t, repo.Log(ctx, "session-1", &activity.ActivityEntry{
		RunID: "run-2", ProjectID: "b", ActivityType: activity.TypeDetailsSkipped, Summary: "b skipped",
	}))
	require.NoError(t, repo.Log(ctx, "session-2", &activity.ActivityEntry{
		ProjectID: "a", ActivityType: activity.TypeDetailsLoaded, Summary: "other session",
	}))

	entries, err := repo.List(ctx, "session-1", activity.ListActivityOptions{ProjectID: "a"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a loaded", entries[0].Summary)

	entries, err = repo.List(ctx, "session-1", activity.ListActivityOptions{RunID: "run-2"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "b", entries[0].ProjectID)

	loaded := activity.TypeDetailsLoaded
	entries, err = repo.List(ctx, "session-2", activity.ListActivityOptions{ActivityType: &loaded})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "other session", entries[0].Summary)

	entries, err = repo.List(ctx, "nobody", activity.ListActivityOptions{})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestActivityRepository_LimitOffset(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActivityRepository(db)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range 5 {
		require.NoError(t, repo.Log(ctx, "s", &activity.ActivityEntry{
			ActivityType: activity.TypeProjectIngested,
			Summary:      string(rune('a' + i)),
			CreatedAt:    base.Add(time.Duration(i) * time.Second),
		}))
	}

	entries, err := repo.List(ctx, "s", activity.ListActivityOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "e", entries[0].Summary)

	entries, err = repo.List(ctx, "s", activity.ListActivityOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "c", entries[0].Summary)

	entries, err = repo.List(ctx, "s", activity.ListActivityOptions{Offset: 4})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "a", entries[0].Summary)
}
