package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/existflow/ironmeet/internal/config"
)

// contextFilePath is where the current meeting id is kept
func contextFilePath() string {
	return filepath.Join(config.Dir(), "context")
}

// GetCurrentMeeting returns the meeting selected with 'meeting use', or ""
func GetCurrentMeeting() string {
	data, err := os.ReadFile(contextFilePath())
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetCurrentMeeting saves the current meeting
func SetCurrentMeeting(meetingID string) error {
	path := contextFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(meetingID), 0644)
}

// ClearCurrentMeeting removes the context file
func ClearCurrentMeeting() error {
	if err := os.Remove(contextFilePath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// meetingArg returns args[0], falling back to the current meeting
func meetingArg(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if id := GetCurrentMeeting(); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("no meeting given and no current meeting set, run 'ironmeet meeting use <id>'")
}
