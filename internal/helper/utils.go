package helper

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

// NewRunID returns a random identifier attached to the logger for one run.
func NewRunID() string {
	return uuid.NewString()
}

// CreateFolder makes sure the directory at path exists.
func CreateFolder(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Preview returns at most n characters of s on a single line.
func Preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
