package gemini

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyPrompt is returned when a request carries no prompt text.
	ErrEmptyPrompt = errors.New("gemini: prompt is empty")
	// ErrBinaryNotFound is returned when the configured binary is not on PATH.
	ErrBinaryNotFound = errors.New("gemini: binary not found")
	// ErrTimeout is returned when the CLI exceeds its deadline.
	ErrTimeout = errors.New("gemini: command timed out")
)

// CommandError reports a non-zero exit from the CLI.
type CommandError struct {
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("gemini exited with code %d", e.ExitCode)
	}
	return fmt.Sprintf("gemini exited with code %d: %s", e.ExitCode, e.Stderr)
}

var quotaMarkers = []string{"RESOURCE_EXHAUSTED", "Quota exceeded"}

// IsQuotaError reports whether err is a CLI failure caused by an exhausted
// model quota.
func IsQuotaError(err error) bool {
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		return false
	}
	for _, marker := range quotaMarkers {
		if strings.Contains(cmdErr.Stderr, marker) {
			return true
		}
	}
	return false
}
