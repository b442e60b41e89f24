package mocks

import (
	"context"

	"github.com/rpggio/statusboard/internal/domain/activity"
	"github.com/stretchr/testify/mock"
)

// Fetcher is a mock for project.Fetcher.
type Fetcher struct {
	mock.Mock
}

func (m *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	args := m.Called(ctx, url)
	return args.String(0), args.Error(1)
}

// Store is a mock for project.Store.
type Store struct {
	mock.Mock
}

func (m *Store) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *Store) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *Store) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, sessionID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, sessionID, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, sessionID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, sessionID, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityLogger is a mock for project.ActivityLogger.
type ActivityLogger struct {
	mock.Mock
}

func (m *ActivityLogger) LogActivity(ctx context.Context, sessionID string, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, sessionID, entry)
	return args.Error(0)
}
