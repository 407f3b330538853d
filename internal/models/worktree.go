package models

// Worktree is the read view of an isolated checkout associated with a
// thread. ThreadName and ThreadStatus come from the left join with the
// owning thread and may be empty when the thread row is gone.
type Worktree struct {
	ID           string `json:"id"`
	ThreadID     string `json:"thread_id"`
	Path         string `json:"path"`
	Branch       string `json:"branch"`
	BaseBranch   string `json:"base_branch"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	ThreadName   string `json:"thread_name"`
	ThreadStatus string `json:"thread_status"`
}
