// Package logtail reads bounded suffixes of line-oriented log files.
package logtail

import (
	"os"
	"strings"
)

// Tail returns the last maxLines lines of the file at path, line endings
// preserved, in original order. An unreadable file or non-positive
// maxLines yields the empty string; log files are append-only and bounded
// by external rotation, so a whole-file read is acceptable here.
func Tail(path string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	lines := strings.SplitAfter(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return strings.Join(lines, "")
}
