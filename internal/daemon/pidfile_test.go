package daemon

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePIDFile(t *testing.T, content string) *PIDFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.pid")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return NewPIDFile(path)
}

func TestPIDFile_Read(t *testing.T) {
	pf := writePIDFile(t, "12345\n")

	pid, err := pf.Read()
	require.NoError(t, err)
	assert.Equal(t, 12345, pid)
}

func TestPIDFile_Read_MissingFile(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "nonexistent.pid"))

	_, err := pf.Read()
	assert.Error(t, err)
}

func TestPIDFile_Read_InvalidContent(t *testing.T) {
	pf := writePIDFile(t, "not-a-number\n")

	_, err := pf.Read()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid PID file content")
}

func TestPIDFile_IsRunning_CurrentProcess(t *testing.T) {
	pf := writePIDFile(t, strconv.Itoa(os.Getpid())+"\n")

	pid, running := pf.IsRunning()
	assert.True(t, running)
	assert.Equal(t, os.Getpid(), pid)
}

func TestPIDFile_IsRunning_DeadProcess(t *testing.T) {
	// Use a very high PID that almost certainly doesn't exist.
	pf := writePIDFile(t, "999999\n")

	pid, running := pf.IsRunning()
	assert.Equal(t, 999999, pid)
	assert.False(t, running)
}

func TestPIDFile_IsRunning_InvalidContent(t *testing.T) {
	pf := writePIDFile(t, "garbage")

	pid, running := pf.IsRunning()
	assert.Equal(t, 0, pid)
	assert.False(t, running)
}

func TestPIDFile_IsRunning_NoFile(t *testing.T) {
	pf := NewPIDFile(filepath.Join(t.TempDir(), "nonexistent.pid"))

	pid, running := pf.IsRunning()
	assert.Equal(t, 0, pid)
	assert.False(t, running)
}
