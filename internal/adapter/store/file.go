// Package store persists the incident dataset and loads the shelter catalog.
//
// Both are flat JSON array files. The incident store is read fully, merged
// in memory, and written back in full; callers must serialize concurrent
// runs since there is no locking on the file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/saferoute/route-risk/internal/domain"
)

// FileStore reads and writes the incident dataset at a fixed path.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the full incident dataset. An absent file is an empty store,
// not an error; a malformed file is surfaced rather than silently emptied,
// so a corrupt dataset is never overwritten by a fresh merge.
func (s *FileStore) Load() ([]domain.Incident, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read incident store: %w", err)
	}

	var incidents []domain.Incident
	if err := json.Unmarshal(data, &incidents); err != nil {
		return nil, fmt.Errorf("parse incident store %s: %w", s.path, err)
	}
	return incidents, nil
}

// Save overwrites the store with the full dataset.
func (s *FileStore) Save(incidents []domain.Incident) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(incidents, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize incident store: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write incident store: %w", err)
	}
	return nil
}

// LoadShelters reads the read-only shelter catalog: a JSON array of objects
// with numeric lat/lon fields plus opaque metadata.
func LoadShelters(path string) ([]domain.Shelter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read shelter catalog: %w", err)
	}

	var shelters []domain.Shelter
	if err := json.Unmarshal(data, &shelters); err != nil {
		return nil, fmt.Errorf("parse shelter catalog %s: %w", path, err)
	}
	return shelters, nil
}
