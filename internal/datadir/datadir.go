// Package datadir resolves where the monitored claude-threads state lives
// and names the files this dashboard reads out of it.
package datadir

import (
	"os"
	"path/filepath"
	"strings"
)

// DirName is the conventional name of the claude-threads state directory.
const DirName = ".claude-threads"

// Resolve picks the data root, decided once at process start:
// explicit override (CT_DATA_DIR), then ./.claude-threads if it exists,
// then ~/.claude-threads if it exists, then ./.claude-threads regardless.
// The final fallback keeps downstream reads uniform: an absent directory
// reads as an empty system instead of a startup failure.
func Resolve(override string) string {
	if override != "" {
		return override
	}
	if fi, err := os.Stat(DirName); err == nil && fi.IsDir() {
		return DirName
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DirName)
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			return p
		}
	}
	return DirName
}

// Paths names the monitored files under a resolved data root.
type Paths struct {
	root string
}

// NewPaths wraps a resolved data root.
func NewPaths(root string) Paths {
	return Paths{root: root}
}

// Root returns the resolved data root directory.
func (p Paths) Root() string { return p.root }

// DB returns the path of the monitored SQLite database.
func (p Paths) DB() string { return filepath.Join(p.root, "threads.db") }

// OrchestratorLog returns the path of the orchestrator log file.
func (p Paths) OrchestratorLog() string {
	return filepath.Join(p.root, "logs", "orchestrator.log")
}

// ThreadLog returns the path of a thread's log file. Ids containing path
// separators are rejected so a request cannot read outside the logs dir.
func (p Paths) ThreadLog(id string) (string, bool) {
	if id == "" || strings.ContainsAny(id, `/\`) || id != filepath.Base(id) {
		return "", false
	}
	return filepath.Join(p.root, "logs", "thread-"+id+".log"), true
}

// OrchestratorPID returns the path of the orchestrator PID file.
func (p Paths) OrchestratorPID() string {
	return filepath.Join(p.root, "orchestrator.pid")
}

// APIServerPID returns the path of the API server PID file.
func (p Paths) APIServerPID() string {
	return filepath.Join(p.root, "api-server.pid")
}
