package models

// Thread is the read view of one unit of agent work tracked by the
// orchestrator. Every field is owned and written externally; timestamps
// pass through as the TEXT the orchestrator wrote them in.
type Thread struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	Status    string `json:"status"`
	Phase     string `json:"phase"`
	Template  string `json:"template"`
	SessionID string `json:"session_id"`
	Worktree  string `json:"worktree"`
	Context   string `json:"context"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// Thread status vocabulary as written by the orchestrator.
const (
	StatusCreated   = "created"
	StatusReady     = "ready"
	StatusRunning   = "running"
	StatusWaiting   = "waiting"
	StatusSleeping  = "sleeping"
	StatusBlocked   = "blocked"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ThreadCounts aggregates thread totals for the status endpoint.
type ThreadCounts struct {
	Total   int `json:"total"`
	Running int `json:"running"`
	Ready   int `json:"ready"`
}
