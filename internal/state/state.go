// Package state keeps the small client-local record that survives between
// runs: the signed-in user and the backend session credential.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/forklift-dev/forklift/internal/api"
	"github.com/forklift-dev/forklift/internal/logger"
)

const fileName = "user.json"

// State is the persisted client record.
type State struct {
	User  *api.User `json:"user,omitempty"`
	Token string    `json:"token,omitempty"`
}

// SignedIn reports whether a usable user record is present.
func (s *State) SignedIn() bool {
	return s.User != nil && s.User.Username != ""
}

// Path returns the state file location inside dataDir.
func Path(dataDir string) string {
	return filepath.Join(dataDir, fileName)
}

// Load reads the state from dataDir/user.json.
// Returns an empty state if the file doesn't exist or can't be parsed.
func Load(dataDir string) *State {
	path := Path(dataDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("Failed to read state file: %v", err)
		}
		return &State{}
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		logger.Warn("Failed to parse state JSON: %v", err)
		return &State{}
	}
	return &st
}

// Save writes the state to dataDir/user.json with owner-only permissions,
// since it carries the session credential.
func Save(dataDir string, st *State) error {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	path := Path(dataDir)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}

	logger.Debug("State saved to %s", path)
	return nil
}

// SaveUser records the confirmed user profile, keeping the stored token.
func SaveUser(dataDir string, user api.User) error {
	st := Load(dataDir)
	st.User = &user
	return Save(dataDir, st)
}

// SaveToken records the session credential, keeping the stored user.
func SaveToken(dataDir, token string) error {
	st := Load(dataDir)
	st.Token = token
	return Save(dataDir, st)
}

// Clear removes the state file. A missing file is not an error.
func Clear(dataDir string) error {
	if err := os.Remove(Path(dataDir)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing state file: %w", err)
	}
	return nil
}
