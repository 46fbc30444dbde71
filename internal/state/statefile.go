// Package state maintains the projected session file: a denormalized,
// best-effort mirror of the active session's state written inside the
// project checkout so out-of-process hooks can read it without a database
// connection. The database stays authoritative; this file is a disposable
// cache, refreshed on every transition and removed on completion.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the projected file location relative to the repository root
const FileName = ".obra/session.json"

// SessionFile is the JSON document mirrored to the repository checkout
type SessionFile struct {
	History   []string  `json:"history"`
	SessionID string    `json:"session_id"`
	StartedAt string    `json:"started_at"`
	State     string    `json:"state"`
	TicketID  string    `json:"ticket_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PathFor returns the projected file path for a repository root
func PathFor(repoRoot string) string {
	return filepath.Join(repoRoot, FileName)
}

// Write persists the projected file, creating its directory if needed.
// Last-write-wins; the file is locked only for the duration of the write.
func Write(repoRoot string, sf *SessionFile) error {
	path := PathFor(repoRoot)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open state file: %w", err)
	}
	defer file.Close()

	if err := lockFile(file); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer unlockFile(file)

	sf.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := file.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate file: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("failed to seek to beginning: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	return nil
}

// Read loads the projected file. Returns (nil, nil) when it doesn't exist.
func Read(repoRoot string) (*SessionFile, error) {
	data, err := os.ReadFile(PathFor(repoRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var sf SessionFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}

	return &sf, nil
}

// Remove deletes the projected file. Missing file is not an error.
func Remove(repoRoot string) error {
	if err := os.Remove(PathFor(repoRoot)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}
	return nil
}
