package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/statusboard/internal/domain/activity"
	"github.com/rpggio/statusboard/internal/domain/project"
)

// ProjectService is the engine surface exposed over HTTP.
type ProjectService interface {
	Lookup(query string) (string, error)
	All() []project.LegacyRecord
	Project(query string) *project.Record
	GetProjectData(query string) *project.LegacyRecord
	EnsureDetails(ctx context.Context, query string) (*project.Record, error)
	InvalidateCacheFor(ctx context.Context, query string) bool
	Refresh(ctx context.Context) error
	Stats() project.Stats
}

// ActivityService lists recorded engine events.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, sessionID string, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Config wires the HTTP server.
type Config struct {
	Projects ProjectService
	Activity ActivityService
	// SessionID scopes activity queries that carry no session header.
	SessionID string
	// Token, when set, is required as a bearer token on every route but /health.
	Token string
	// MCP is mounted at /mcp when non-nil.
	MCP    http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	projects  ProjectService
	activity  ActivityService
	sessionID string
	logger    *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(cfg Config) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{
		projects:  cfg.Projects,
		activity:  cfg.Activity,
		sessionID: cfg.SessionID,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if cfg.Token != "" {
			r.Use(AuthMiddleware(StaticToken(cfg.Token)))
		}
		r.Use(SessionMiddleware)

		r.Get("/projects", srv.handleListProjects)
		r.Get("/projects/{query}", srv.handleGetProject)
		r.Get("/projects/{query}/structured", srv.handleGetStructured)
		r.Post("/projects/{query}/details", srv.handleEnsureDetails)
		r.Delete("/projects/{query}/details", srv.handleInvalidate)
		r.Post("/refresh", srv.handleRefresh)
		r.Get("/stats", srv.handleStats)
		r.Get("/resolve/{query}", srv.handleResolve)
		r.Get("/activity", srv.handleActivity)

		if cfg.MCP != nil {
			r.Handle("/mcp", cfg.MCP)
			r.Handle("/mcp/*", cfg.MCP)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleListProjects(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, s.projects.All())
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	rec := s.projects.GetProjectData(id)
	if rec == nil {
		WriteError(w, project.ErrProjectNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetStructured(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	rec := s.projects.Project(id)
	if rec == nil {
		WriteError(w, project.ErrProjectNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) handleEnsureDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	rec, err := s.projects.EnsureDetails(r.Context(), id)
	if err != nil {
		s.logger.Warn("ensure details failed", "project_id", id, "error", err)
		WriteError(w, err)
		return
	}
	if rec == nil {
		WriteError(w, project.ErrProjectNotFound)
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if !s.projects.InvalidateCacheFor(r.Context(), id) {
		WriteError(w, project.ErrProjectNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.Refresh(r.Context()); err != nil {
		s.logger.Error("refresh failed", "error", err)
		WriteError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, s.projects.Stats())
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, s.projects.Stats())
}

type resolveResponse struct {
	Query string `json:"query"`
	ID    string `json:"id"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookup(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, resolveResponse{Query: queryParam(r), ID: id})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if s.activity == nil {
		WriteJSON(w, http.StatusOK, []activity.ActivityEntry{})
		return
	}

	q := r.URL.Query()
	opts := activity.ListActivityOptions{
		ProjectID: q.Get("project_id"),
		RunID:     q.Get("run_id"),
	}
	if typ := q.Get("type"); typ != "" {
		t := activity.ActivityType(typ)
		opts.ActivityType = &t
	}
	var err error
	if opts.Limit, err = intParam(q, "limit"); err != nil {
		WriteError(w, err)
		return
	}
	if opts.Offset, err = intParam(q, "offset"); err != nil {
		WriteError(w, err)
		return
	}

	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok {
		sessionID = s.sessionID
	}

	entries, err := s.activity.GetRecentActivity(r.Context(), sessionID, opts)
	if err != nil {
		WriteError(w, err)
		return
	}
	if entries == nil {
		entries = []activity.ActivityEntry{}
	}
	WriteJSON(w, http.StatusOK, entries)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, err := s.projects.Lookup(queryParam(r))
	if err != nil {
		if !errors.Is(err, project.ErrProjectNotFound) {
			s.logger.Debug("lookup failed", "query", queryParam(r), "error", err)
		}
		WriteError(w, err)
		return "", false
	}
	return id, true
}

func queryParam(r *http.Request) string {
	raw := chi.URLParam(r, "query")
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &paramError{name: name, value: v}
	}
	return n, nil
}
