// Package store is the read access layer over the orchestrator's
// threads.db. Every operation is a fixed, parameterized, read-only query.
// The database is owned and written by an external process, so nothing
// here ever fails a request: an absent store, a mid-write query error, or
// a bad row all degrade to the zero value, with the error logged for
// operator visibility only.
package store

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"

	"github.com/joescharf/ctdash/internal/models"

	_ "modernc.org/sqlite"
)

// Clamp ceilings applied before binding user-supplied limits.
const (
	ThreadListLimit   = 100
	MaxEventLimit     = 500
	defaultEventLimit = 50
)

// The closed set of statements this layer runs. User-supplied values are
// only ever bound as parameters, never interpolated.
const (
	qCountThreads         = `SELECT COUNT(*) FROM threads`
	qCountThreadsByStatus = `SELECT COUNT(*) FROM threads WHERE status = ?`
	qCountPendingEvents   = `SELECT COUNT(*) FROM events WHERE processed = 0`

	qListThreads = `SELECT id, name, mode, status, phase, template, session_id, worktree, context, created_at, updated_at
		FROM threads ORDER BY updated_at DESC LIMIT ?`

	qGetThread = `SELECT id, name, mode, status, phase, template, session_id, worktree, context, created_at, updated_at
		FROM threads WHERE id = ?`

	qListEvents = `SELECT id, type, source, target, data, processed, timestamp
		FROM events ORDER BY timestamp DESC LIMIT ?`

	qListWorktrees = `SELECT w.id, w.thread_id, w.path, w.branch, w.base_branch, w.status, w.created_at,
			t.name, t.status
		FROM worktrees w
		LEFT JOIN threads t ON w.thread_id = t.id
		ORDER BY w.created_at DESC`
)

// Store reads the monitored database. It holds only the path: each query
// opens a fresh connection and releases it before returning, because the
// file may appear, disappear, or be rewritten between requests.
type Store struct {
	dbPath string
}

// New creates a Store for the database at dbPath. The file does not need
// to exist; queries against an absent store report an empty system.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

// open returns a connection to the monitored database, or false when the
// store is absent or unopenable. Callers must Close the returned handle.
func (s *Store) open() (*sql.DB, bool) {
	if _, err := os.Stat(s.dbPath); err != nil {
		return nil, false
	}
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		slog.Warn("open monitored database", "path", s.dbPath, "error", err)
		return nil, false
	}
	return db, true
}

// scalarCount runs a COUNT query and returns 0 on any failure.
func (s *Store) scalarCount(ctx context.Context, query string, args ...any) int {
	db, ok := s.open()
	if !ok {
		return 0
	}
	defer func() { _ = db.Close() }()

	var n int
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("scalar query failed", "error", err)
		}
		return 0
	}
	return n
}

// ThreadCounts returns total/running/ready thread counts.
func (s *Store) ThreadCounts(ctx context.Context) models.ThreadCounts {
	return models.ThreadCounts{
		Total:   s.scalarCount(ctx, qCountThreads),
		Running: s.scalarCount(ctx, qCountThreadsByStatus, models.StatusRunning),
		Ready:   s.scalarCount(ctx, qCountThreadsByStatus, models.StatusReady),
	}
}

// CountPendingEvents returns the number of events the orchestrator has
// not yet consumed.
func (s *Store) CountPendingEvents(ctx context.Context) int {
	return s.scalarCount(ctx, qCountPendingEvents)
}

// ListThreads returns the latest threads ordered by updated_at descending,
// at most ThreadListLimit of them. Never nil.
func (s *Store) ListThreads(ctx context.Context) []models.Thread {
	threads := []models.Thread{}

	db, ok := s.open()
	if !ok {
		return threads
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, qListThreads, ThreadListLimit)
	if err != nil {
		slog.Warn("list threads failed", "error", err)
		return threads
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		t, err := scanThread(rows.Scan)
		if err != nil {
			slog.Warn("scan thread failed", "error", err)
			break
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		slog.Warn("list threads failed", "error", err)
	}
	return threads
}

// GetThread returns a single thread's full row, or false if absent (which
// includes every failure mode of the read).
func (s *Store) GetThread(ctx context.Context, id string) (models.Thread, bool) {
	db, ok := s.open()
	if !ok {
		return models.Thread{}, false
	}
	defer func() { _ = db.Close() }()

	row := db.QueryRowContext(ctx, qGetThread, id)
	t, err := scanThread(row.Scan)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("get thread failed", "id", id, "error", err)
		}
		return models.Thread{}, false
	}
	return t, true
}

// ListEvents returns the latest limit events ordered by timestamp
// descending. The limit is clamped to MaxEventLimit before binding;
// non-positive values fall back to the default. Never nil.
func (s *Store) ListEvents(ctx context.Context, limit int) []models.Event {
	if limit < 1 {
		limit = defaultEventLimit
	}
	if limit > MaxEventLimit {
		limit = MaxEventLimit
	}

	events := []models.Event{}

	db, ok := s.open()
	if !ok {
		return events
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, qListEvents, limit)
	if err != nil {
		slog.Warn("list events failed", "error", err)
		return events
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var e models.Event
		var typ, source, target, data, timestamp sql.NullString
		var processed sql.NullBool
		if err := rows.Scan(&e.ID, &typ, &source, &target, &data, &processed, &timestamp); err != nil {
			slog.Warn("scan event failed", "error", err)
			break
		}
		e.Type = typ.String
		e.Source = source.String
		e.Target = target.String
		e.Data = data.String
		e.Processed = processed.Bool
		e.Timestamp = timestamp.String
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		slog.Warn("list events failed", "error", err)
	}
	return events
}

// ListWorktrees returns all worktrees joined with their owning thread's
// name and status, newest first. Never nil.
func (s *Store) ListWorktrees(ctx context.Context) []models.Worktree {
	worktrees := []models.Worktree{}

	db, ok := s.open()
	if !ok {
		return worktrees
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, qListWorktrees)
	if err != nil {
		slog.Warn("list worktrees failed", "error", err)
		return worktrees
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var w models.Worktree
		var threadID, path, branch, baseBranch, status, createdAt, threadName, threadStatus sql.NullString
		if err := rows.Scan(&w.ID, &threadID, &path, &branch, &baseBranch, &status, &createdAt, &threadName, &threadStatus); err != nil {
			slog.Warn("scan worktree failed", "error", err)
			break
		}
		w.ThreadID = threadID.String
		w.Path = path.String
		w.Branch = branch.String
		w.BaseBranch = baseBranch.String
		w.Status = status.String
		w.CreatedAt = createdAt.String
		w.ThreadName = threadName.String
		w.ThreadStatus = threadStatus.String
		worktrees = append(worktrees, w)
	}
	if err := rows.Err(); err != nil {
		slog.Warn("list worktrees failed", "error", err)
	}
	return worktrees
}

// scanThread scans one thread row; nullable columns map to "".
func scanThread(scan func(dest ...any) error) (models.Thread, error) {
	var t models.Thread
	var name, mode, status, phase, template, sessionID, worktree, contextJSON, createdAt, updatedAt sql.NullString

	if err := scan(&t.ID, &name, &mode, &status, &phase, &template, &sessionID, &worktree, &contextJSON, &createdAt, &updatedAt); err != nil {
		return models.Thread{}, err
	}

	t.Name = name.String
	t.Mode = mode.String
	t.Status = status.String
	t.Phase = phase.String
	t.Template = template.String
	t.SessionID = sessionID.String
	t.Worktree = worktree.String
	t.Context = contextJSON.String
	t.CreatedAt = createdAt.String
	t.UpdatedAt = updatedAt.String
	return t, nil
}
