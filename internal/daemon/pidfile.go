// Package daemon probes the liveness of the external orchestrator
// processes through their PID files. The dashboard only ever reads these
// files; writing and removal belong to the processes themselves.
package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// PIDFile reads a PID file written by an external process.
type PIDFile struct {
	Path string
}

// NewPIDFile creates a PIDFile reader for the given path.
func NewPIDFile(path string) *PIDFile {
	return &PIDFile{Path: path}
}

// Read reads the decimal PID from the file.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file content: %w", err)
	}
	return pid, nil
}
