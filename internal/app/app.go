// Package app wires configuration into the engine and its collaborators.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpggio/statusboard/internal/config"
	"github.com/rpggio/statusboard/internal/domain/activity"
	"github.com/rpggio/statusboard/internal/domain/project"
	"github.com/rpggio/statusboard/internal/fetch"
	"github.com/rpggio/statusboard/internal/sqlite"
)

// App holds the wired services over one database.
type App struct {
	DB        *sqlite.DB
	Projects  *project.Service
	Activity  *activity.Service
	SessionID string
}

// Open prepares the database and builds the services. The engine is not
// initialized; callers decide when to load or ingest.
func Open(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)
	projectSvc := project.NewService(
		fetch.NewClient(cfg.Fetch.Timeout, logger),
		sqlite.NewSessionStore(db, cfg.Session.ID),
		activitySvc,
		cfg.ProjectOptions(),
		logger,
	)

	return &App{DB: db, Projects: projectSvc, Activity: activitySvc, SessionID: cfg.Session.ID}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}

func ensureDBDir(path string) error {
	if path == "" || path == ":memory:" || filepath.Dir(path) == "." {
		return nil
	}
	if strings.HasPrefix(path, "file:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
