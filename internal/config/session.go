package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// SessionState is the small piece of state persisted between runs.
type SessionState struct {
	LastUsername string `json:"lastUsername,omitempty"`
}

// LoadSession reads the persisted session state. A missing or unreadable
// file yields an empty session rather than an error.
func LoadSession() SessionState {
	var state SessionState

	data, err := os.ReadFile(SessionFile)
	if err != nil {
		return state
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return SessionState{}
	}
	return state
}

// SaveSession writes the session state to disk.
func SaveSession(state SessionState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}
	if err := os.WriteFile(SessionFile, data, FilePermissions); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
