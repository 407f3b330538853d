// Package api serves the dashboard document and the read-only JSON API
// polled by it.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/joescharf/ctdash/internal/daemon"
	"github.com/joescharf/ctdash/internal/datadir"
	"github.com/joescharf/ctdash/internal/logtail"
	"github.com/joescharf/ctdash/internal/models"
	"github.com/joescharf/ctdash/internal/store"
	"github.com/joescharf/ctdash/internal/ui"
)

// Clamp ceilings and defaults for user-supplied line counts.
const (
	defaultThreadLogLines = 50
	maxThreadLogLines     = 500
	defaultOrchLogLines   = 100
	maxOrchLogLines       = 1000
	defaultEventLimit     = 50
)

// Server provides the dashboard HTTP handlers. All state it touches is
// owned by external processes; every handler is a read.
type Server struct {
	store *store.Store
	paths datadir.Paths
}

// NewServer creates the dashboard server over a resolved data directory.
func NewServer(s *store.Store, paths datadir.Paths) *Server {
	return &Server{store: s, paths: paths}
}

// Router returns an http.Handler for the closed GET-only route table.
// Unmatched paths 404; no other verbs are supported.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.dashboard)
	mux.HandleFunc("GET /index.html", s.dashboard)

	mux.HandleFunc("GET /api/status", s.status)
	mux.HandleFunc("GET /api/threads", s.listThreads)
	mux.HandleFunc("GET /api/thread/{id}", s.getThread)
	mux.HandleFunc("GET /api/thread/{id}/logs", s.threadLogs)
	mux.HandleFunc("GET /api/events", s.listEvents)
	mux.HandleFunc("GET /api/worktrees", s.listWorktrees)
	mux.HandleFunc("GET /api/logs", s.orchestratorLogs)

	return corsMiddleware(mux)
}

// corsMiddleware allows the dashboard to be polled from a different
// origin during development.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "error", err)
	}
}

// clampedQueryInt parses an integer query parameter, falling back to def
// on absence or parse failure and clamping to the ceiling before use.
func clampedQueryInt(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(ui.Dashboard())
}

// statusReport is the aggregate for GET /api/status.
type statusReport struct {
	Threads             models.ThreadCounts `json:"threads"`
	EventsPending       int                 `json:"events_pending"`
	OrchestratorRunning bool                `json:"orchestrator_running"`
	APIRunning          bool                `json:"api_running"`
	Timestamp           string              `json:"timestamp"`
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeJSON(w, http.StatusOK, statusReport{
		Threads:             s.store.ThreadCounts(ctx),
		EventsPending:       s.store.CountPendingEvents(ctx),
		OrchestratorRunning: pidAlive(s.paths.OrchestratorPID()),
		APIRunning:          pidAlive(s.paths.APIServerPID()),
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
	})
}

func pidAlive(path string) bool {
	_, running := daemon.NewPIDFile(path).IsRunning()
	return running
}

func (s *Server) listThreads(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListThreads(r.Context()))
}

func (s *Server) getThread(w http.ResponseWriter, r *http.Request) {
	t, ok := s.store.GetThread(r.Context(), r.PathValue("id"))
	if !ok {
		// Absent entities are signaled in-band with HTTP 200; the
		// dashboard client branches on the "error" key, not the status
		// code. Unknown routes still 404.
		writeJSON(w, http.StatusOK, map[string]string{"error": "Thread not found"})
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// threadLogsResponse is the tail payload for GET /api/thread/{id}/logs.
type threadLogsResponse struct {
	ThreadID string `json:"thread_id"`
	Lines    int    `json:"lines"`
	Content  string `json:"content"`
}

func (s *Server) threadLogs(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	lines := clampedQueryInt(r, "lines", defaultThreadLogLines, maxThreadLogLines)

	var content string
	if path, ok := s.paths.ThreadLog(id); ok {
		content = logtail.Tail(path, lines)
	}
	writeJSON(w, http.StatusOK, threadLogsResponse{
		ThreadID: id,
		Lines:    lines,
		Content:  content,
	})
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	limit := clampedQueryInt(r, "limit", defaultEventLimit, store.MaxEventLimit)
	writeJSON(w, http.StatusOK, s.store.ListEvents(r.Context(), limit))
}

func (s *Server) listWorktrees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.ListWorktrees(r.Context()))
}

// orchestratorLogsResponse is the tail payload for GET /api/logs.
type orchestratorLogsResponse struct {
	File    string `json:"file"`
	Lines   int    `json:"lines"`
	Content string `json:"content"`
}

func (s *Server) orchestratorLogs(w http.ResponseWriter, r *http.Request) {
	lines := clampedQueryInt(r, "lines", defaultOrchLogLines, maxOrchLogLines)
	writeJSON(w, http.StatusOK, orchestratorLogsResponse{
		File:    "orchestrator.log",
		Lines:   lines,
		Content: logtail.Tail(s.paths.OrchestratorLog(), lines),
	})
}
