package project

import (
	"context"

	"github.com/rpggio/statusboard/internal/domain/activity"
)

// Fetcher retrieves a document by URL. Not-found must wrap
// repository.ErrNotFound.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Store is a key/value slot scoped to the caller's session. Get returns
// repository.ErrNotFound when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// ActivityLogger records engine events.
type ActivityLogger interface {
	LogActivity(ctx context.Context, sessionID string, entry *activity.ActivityEntry) error
}
