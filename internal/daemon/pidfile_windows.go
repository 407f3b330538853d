//go:build windows

package daemon

import (
	"os"
	"syscall"
)

// IsRunning checks if the PID file exists and the process is alive.
// On Windows, uses os.FindProcess + a zero signal equivalent.
func (p *PIDFile) IsRunning() (int, bool) {
	pid, err := p.Read()
	if err != nil {
		return 0, false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, false
	}
	err = proc.Signal(syscall.Signal(0))
	return pid, err == nil
}
