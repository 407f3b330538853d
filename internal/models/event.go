package models

// Event is the read view of an inter-thread/orchestrator message.
// Processed tells whether the orchestrator has consumed it.
type Event struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Data      string `json:"data"`
	Processed bool   `json:"processed"`
	Timestamp string `json:"timestamp"`
}
