package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/statusboard/internal/app"
	"github.com/rpggio/statusboard/internal/config"
	"github.com/rpggio/statusboard/internal/domain/activity"
	"github.com/rpggio/statusboard/internal/domain/project"
	"github.com/rpggio/statusboard/internal/mcp"
	"github.com/rpggio/statusboard/internal/sqlite"
	"github.com/rpggio/statusboard/internal/transport"
	"github.com/stretchr/testify/require"
)

// TestServer runs the full stack against an in-memory database and a fake
// raw-content host.
type TestServer struct {
	Server   *httptest.Server
	Raw      *RawHost
	DB       *sqlite.DB
	Config   config.Config
	Projects *project.Service
	Activity *activity.Service
	Token    string
}

// Option adjusts the configuration before services are built.
type Option func(*config.Config)

// WithToken requires bearer auth on the API.
func WithToken(token string) Option {
	return func(cfg *config.Config) { cfg.Server.Token = token }
}

// New serves docs (path → body) from a fake raw host and starts the API on
// top of it. Paths are relative to the raw base, e.g.
// "Anickzs/DIYapp/main/ProjectDetails.md".
func New(t *testing.T, docs map[string]string, opts ...Option) *TestServer {
	t.Helper()

	raw := NewRawHost(docs)
	rawServer := httptest.NewServer(raw)

	cfg := config.Default()
	cfg.Ingest.RawBaseURL = rawServer.URL
	cfg.Session.ID = "test-session"
	cfg.Fetch.Timeout = 5 * time.Second
	for _, opt := range opts {
		opt(&cfg)
	}

	cfg.DB.Path = fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))

	a, err := app.Open(cfg, nil)
	require.NoError(t, err)
	projectSvc, activitySvc := a.Projects, a.Activity
	require.NoError(t, projectSvc.Initialize(context.Background()))

	mcpServer := mcp.NewServer(mcp.Config{
		Services:      mcp.Services{Projects: projectSvc, Activity: activitySvc},
		SessionID:     cfg.Session.ID,
		TransportMode: config.ModeHTTP,
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: true},
	)

	server := httptest.NewServer(transport.NewServer(transport.Config{
		Projects:  projectSvc,
		Activity:  activitySvc,
		SessionID: cfg.Session.ID,
		Token:     cfg.Server.Token,
		MCP:       mcpHandler,
	}))

	t.Cleanup(func() {
		server.Close()
		rawServer.Close()
		_ = a.Close()
	})

	return &TestServer{
		Server:   server,
		Raw:      raw,
		DB:       a.DB,
		Config:   cfg,
		Projects: projectSvc,
		Activity: activitySvc,
		Token:    cfg.Server.Token,
	}
}

// Do issues a request against the API, adding the bearer token when set.
func (ts *TestServer) Do(t *testing.T, method, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, ts.Server.URL+path, nil)
	require.NoError(t, err)
	if ts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.Token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// RawHost serves a mutable set of documents and counts requests per path.
type RawHost struct {
	mu   sync.Mutex
	docs map[string]string
	hits map[string]int
}

// NewRawHost creates a host serving docs.
func NewRawHost(docs map[string]string) *RawHost {
	h := &RawHost{docs: make(map[string]string), hits: make(map[string]int)}
	for path, body := range docs {
		h.docs[strings.TrimPrefix(path, "/")] = body
	}
	return h
}

// Set replaces or adds a document.
func (h *RawHost) Set(path, body string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.docs[strings.TrimPrefix(path, "/")] = body
}

// Remove deletes a document.
func (h *RawHost) Remove(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.docs, strings.TrimPrefix(path, "/"))
}

// Hits reports how often path was requested.
func (h *RawHost) Hits(path string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hits[strings.TrimPrefix(path, "/")]
}

func (h *RawHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")
	h.mu.Lock()
	h.hits[path]++
	body, ok := h.docs[path]
	h.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(body))
}
