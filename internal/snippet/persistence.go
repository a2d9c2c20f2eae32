package snippet

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type persistedData struct {
	Version  int       `json:"version"`
	SavedAt  time.Time `json:"saved_at"`
	Snippets []Snippet `json:"snippets"`
}

const currentVersion = 1

// Save writes all snippets to path atomically using a temporary file and
// rename.
func Save(s *Store, path string) error {
	data := persistedData{
		Version:  currentVersion,
		SavedAt:  time.Now(),
		Snippets: s.List(),
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snippets: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, jsonData, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()
	return nil
}

// Load replaces the store's snippets with those in path. A missing file
// leaves the store empty.
func Load(s *Store, path string) error {
	jsonData, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.replace(nil)
			return nil
		}
		return fmt.Errorf("failed to read snippets file: %w", err)
	}

	var data persistedData
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return fmt.Errorf("failed to unmarshal snippets: %w", err)
	}
	if data.Version > currentVersion {
		return fmt.Errorf("unsupported snippets file version: %d (max supported: %d)",
			data.Version, currentVersion)
	}

	valid := data.Snippets[:0]
	for _, sn := range data.Snippets {
		if sn.ID >= 0 {
			valid = append(valid, sn)
		}
	}
	s.replace(valid)
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/osk/snippets.json or its platform
// equivalent.
func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(configDir, "osk", "snippets.json"), nil
}
