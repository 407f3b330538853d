// Package storetest builds throwaway monitored databases with the schema
// the orchestrator writes, for exercising the read path in tests.
package storetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/ctdash/internal/models"

	_ "modernc.org/sqlite"
)

// schema mirrors what the orchestrator creates; this dashboard never runs
// DDL against a real store.
const schema = `
CREATE TABLE threads (
	id TEXT PRIMARY KEY,
	name TEXT,
	mode TEXT,
	status TEXT,
	phase TEXT,
	template TEXT,
	session_id TEXT,
	worktree TEXT,
	context TEXT,
	created_at TEXT,
	updated_at TEXT
);
CREATE TABLE events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	type TEXT,
	source TEXT,
	target TEXT,
	data TEXT,
	processed INTEGER DEFAULT 0,
	timestamp TEXT
);
CREATE TABLE worktrees (
	id TEXT PRIMARY KEY,
	thread_id TEXT,
	path TEXT,
	branch TEXT,
	base_branch TEXT,
	status TEXT,
	created_at TEXT
);`

// DB is a seeded monitored database on disk.
type DB struct {
	*sql.DB
	Path string
}

// Create makes a fresh threads.db in dir with the orchestrator's schema.
func Create(t *testing.T, dir string) *DB {
	t.Helper()
	path := filepath.Join(dir, "threads.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)

	return &DB{DB: db, Path: path}
}

// NewID returns a ULID string, the id shape the orchestrator writes.
func NewID() string {
	return ulid.Make().String()
}

// InsertThread writes a thread row the way the orchestrator would.
func (d *DB) InsertThread(t *testing.T, th models.Thread) {
	t.Helper()
	_, err := d.Exec(
		`INSERT INTO threads (id, name, mode, status, phase, template, session_id, worktree, context, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		th.ID, th.Name, th.Mode, th.Status, th.Phase, th.Template,
		th.SessionID, th.Worktree, th.Context, th.CreatedAt, th.UpdatedAt,
	)
	require.NoError(t, err)
}

// InsertEvent writes an event row; the assigned id is discarded.
func (d *DB) InsertEvent(t *testing.T, e models.Event) {
	t.Helper()
	processed := 0
	if e.Processed {
		processed = 1
	}
	_, err := d.Exec(
		`INSERT INTO events (type, source, target, data, processed, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.Type, e.Source, e.Target, e.Data, processed, e.Timestamp,
	)
	require.NoError(t, err)
}

// InsertWorktree writes a worktree row.
func (d *DB) InsertWorktree(t *testing.T, w models.Worktree) {
	t.Helper()
	_, err := d.Exec(
		`INSERT INTO worktrees (id, thread_id, path, branch, base_branch, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.ThreadID, w.Path, w.Branch, w.BaseBranch, w.Status, w.CreatedAt,
	)
	require.NoError(t, err)
}
