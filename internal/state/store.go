package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store handles state persistence.
type Store struct {
	path string
}

// NewStore creates a store that persists to the given file.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path is the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state from disk. A missing file yields Default.
func (s *Store) Load() (State, error) {
	state := Default()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return state, nil
		}
		return state, err
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", s.path, err)
	}

	return state, nil
}

// Save writes the state to disk.
func (s *Store) Save(state State) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}
