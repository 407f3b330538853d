package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/ctdash/internal/models"
	"github.com/joescharf/ctdash/internal/storetest"
)

func TestAbsentStore_DegradesToEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "threads.db"))
	ctx := context.Background()

	counts := s.ThreadCounts(ctx)
	assert.Equal(t, models.ThreadCounts{}, counts)
	assert.Zero(t, s.CountPendingEvents(ctx))

	assert.Empty(t, s.ListThreads(ctx))
	assert.NotNil(t, s.ListThreads(ctx))
	assert.Empty(t, s.ListEvents(ctx, 50))
	assert.NotNil(t, s.ListEvents(ctx, 50))
	assert.Empty(t, s.ListWorktrees(ctx))
	assert.NotNil(t, s.ListWorktrees(ctx))

	_, ok := s.GetThread(ctx, "t1")
	assert.False(t, ok)
}

func TestCorruptStore_DegradesToEmpty(t *testing.T) {
	// A file that exists but is not a SQLite database.
	path := filepath.Join(t.TempDir(), "threads.db")
	require.NoError(t, os.WriteFile(path, []byte("this is not a database"), 0o644))

	s := New(path)
	ctx := context.Background()

	assert.Zero(t, s.ThreadCounts(ctx).Total)
	assert.Empty(t, s.ListThreads(ctx))
	assert.Empty(t, s.ListWorktrees(ctx))
}

func TestThreadCounts(t *testing.T) {
	db := storetest.Create(t, t.TempDir())
	statuses := []string{
		models.StatusRunning, models.StatusRunning,
		models.StatusReady,
		models.StatusCompleted, models.StatusFailed,
	}
	for i, status := range statuses {
		db.InsertThread(t, models.Thread{
			ID:        storetest.NewID(),
			Name:      fmt.Sprintf("worker-%d", i),
			Status:    status,
			UpdatedAt: fmt.Sprintf("2024-01-01 00:00:0%d", i),
		})
	}

	counts := New(db.Path).ThreadCounts(context.Background())
	assert.Equal(t, models.ThreadCounts{Total: 5, Running: 2, Ready: 1}, counts)
}

func TestCountPendingEvents(t *testing.T) {
	db := storetest.Create(t, t.TempDir())
	db.InsertEvent(t, models.Event{Type: "wake", Processed: false, Timestamp: "2024-01-01 00:00:01"})
	db.InsertEvent(t, models.Event{Type: "wake", Processed: false, Timestamp: "2024-01-01 00:00:02"})
	db.InsertEvent(t, models.Event{Type: "done", Processed: true, Timestamp: "2024-01-01 00:00:03"})

	assert.Equal(t, 2, New(db.Path).CountPendingEvents(context.Background()))
}

func TestListThreads_NewestFirst(t *testing.T) {
	db := storetest.Create(t, t.TempDir())
	db.InsertThread(t, models.Thread{ID: "old", Status: models.StatusCompleted, UpdatedAt: "2024-01-01 00:00:00"})
	db.InsertThread(t, models.Thread{ID: "new", Status: models.StatusRunning, UpdatedAt: "2024-01-03 00:00:00"})
	db.InsertThread(t, models.Thread{ID: "mid", Status: models.StatusReady, UpdatedAt: "2024-01-02 00:00:00"})

	threads := New(db.Path).ListThreads(context.Background())
	require.Len(t, threads, 3)
	assert.Equal(t, "new", threads[0].ID)
	assert.Equal(t, "mid", threads[1].ID)
	assert.Equal(t, "old", threads[2].ID)
}

func TestListThreads_CapsAtLimit(t *testing.T) {
	db := storetest.Create(t, t.TempDir())
	for i := 0; i < ThreadListLimit+20; i++ {
		db.InsertThread(t, models.Thread{
			ID:        storetest.NewID(),
			Status:    models.StatusCreated,
			UpdatedAt: fmt.Sprintf("2024-01-01 %02d:%02d:00", i/60, i%60),
		})
	}

	threads := New(db.Path).ListThreads(context.Background())
	assert.Len(t, threads, ThreadListLimit)
}

func TestGetThread(t *testing.T) {
	db := storetest.Create(t, t.TempDir())
	db.InsertThread(t, models.Thread{
		ID:        "t1",
		Name:      "builder",
		Mode:      "autonomous",
		Status:    models.StatusRunning,
		Phase:     "implement",
		Template:  "default",
		SessionID: "sess-1",
		Worktree:  "/tmp/wt/t1",
		Context:   `{"task":"build"}`,
		CreatedAt: "2024-01-01 00:00:00",
		UpdatedAt: "2024-01-01 00:05:00",
	})

	s := New(db.Path)
	ctx := context.Background()

	got, ok := s.GetThread(ctx, "t1")
	require.True(t, ok)
	assert.Equal(t, "builder", got.Name)
	assert.Equal(t, models.StatusRunning, got.Status)
	assert.Equal(t, `{"task":"build"}`, got.Context)
	assert.Equal(t, "2024-01-01 00:05:00", got.UpdatedAt)

	_, ok = s.GetThread(ctx, "does-not-exist")
	assert.False(t, ok)
}

func TestGetThread_NullColumns(t *testing.T) {
	db := storetest.Create(t, t.TempDir())
	_, err := db.Exec(`INSERT INTO threads (id) VALUES ('bare')`)
	require.NoError(t, err)

	got, ok := New(db.Path).GetThread(context.Background(), "bare")
	require.True(t, ok)
	assert.Equal(t, "bare", got.ID)
	assert.Empty(t, got.Name)
	assert.Empty(t, got.Status)
}

func TestListEvents_NewestFirstAndFields(t *testing.T) {
	db := storetest.Create(t, t.TempDir())
	db.InsertEvent(t, models.Event{Type: "spawn", Source: "orchestrator", Target: "t1", Data: "{}", Timestamp: "2024-01-01 00:00:01"})
	db.InsertEvent(t, models.Event{Type: "wake", Source: "t1", Target: "t2", Processed: true, Timestamp: "2024-01-01 00:00:02"})

	events := New(db.Path).ListEvents(context.Background(), 50)
	require.Len(t, events, 2)
	assert.Equal(t, "wake", events[0].Type)
	assert.True(t, events[0].Processed)
	assert.Equal(t, "spawn", events[1].Type)
	assert.False(t, events[1].Processed)
	assert.Equal(t, "orchestrator", events[1].Source)
}

func TestListEvents_ClampsLimit(t *testing.T) {
	db := storetest.Create(t, t.TempDir())
	for i := 0; i < MaxEventLimit+10; i++ {
		db.InsertEvent(t, models.Event{
			Type:      "tick",
			Timestamp: fmt.Sprintf("2024-01-01 %02d:%02d:%02d", i/3600, (i/60)%60, i%60),
		})
	}

	s := New(db.Path)
	ctx := context.Background()

	// A huge requested limit never exceeds the ceiling.
	assert.Len(t, s.ListEvents(ctx, 999999), MaxEventLimit)
	// Non-positive limits fall back to the default.
	assert.Len(t, s.ListEvents(ctx, 0), defaultEventLimit)
	assert.Len(t, s.ListEvents(ctx, -1), defaultEventLimit)
	// In-range limits bind as given.
	assert.Len(t, s.ListEvents(ctx, 3), 3)
}

func TestListWorktrees_JoinsOwningThread(t *testing.T) {
	db := storetest.Create(t, t.TempDir())
	db.InsertThread(t, models.Thread{ID: "t1", Name: "builder", Status: models.StatusRunning, UpdatedAt: "2024-01-01 00:00:00"})
	db.InsertWorktree(t, models.Worktree{
		ID: "w1", ThreadID: "t1", Path: "/tmp/wt/t1",
		Branch: "feature/x", BaseBranch: "main", Status: "active",
		CreatedAt: "2024-01-01 00:00:00",
	})
	// Orphan worktree: owning thread row is gone.
	db.InsertWorktree(t, models.Worktree{
		ID: "w2", ThreadID: "gone", Path: "/tmp/wt/gone",
		Branch: "feature/y", CreatedAt: "2024-01-02 00:00:00",
	})

	worktrees := New(db.Path).ListWorktrees(context.Background())
	require.Len(t, worktrees, 2)

	// Newest first.
	assert.Equal(t, "w2", worktrees[0].ID)
	assert.Empty(t, worktrees[0].ThreadName)
	assert.Empty(t, worktrees[0].ThreadStatus)

	assert.Equal(t, "w1", worktrees[1].ID)
	assert.Equal(t, "builder", worktrees[1].ThreadName)
	assert.Equal(t, models.StatusRunning, worktrees[1].ThreadStatus)
	assert.Equal(t, "main", worktrees[1].BaseBranch)
}
