// Package legacy reads and writes the flat key/value file used before the
// sqlite database existed.
package legacy

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// FlatStore is a synchronous string map persisted as a YAML document.
type FlatStore struct {
	mu   sync.Mutex
	path string
	data map[string]string
}

// Open loads the file at path. A missing file yields an empty store.
func Open(path string) (*FlatStore, error) {
	s := &FlatStore{path: path, data: map[string]string{}}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy storage: %w", err)
	}
	if err := yaml.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse legacy storage: %w", err)
	}
	if s.data == nil {
		s.data = map[string]string{}
	}
	return s, nil
}

// Get returns the value stored under key.
func (s *FlatStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key and rewrites the file.
func (s *FlatStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, had := s.data[key]
	s.data[key] = value
	if err := s.save(); err != nil {
		if had {
			s.data[key] = prev
		} else {
			delete(s.data, key)
		}
		return err
	}
	return nil
}

// Keys lists the stored keys in order.
func (s *FlatStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *FlatStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create legacy storage directory: %w", err)
	}

	data, err := yaml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to marshal legacy storage: %w", err)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write legacy storage: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace legacy storage: %w", err)
	}
	return nil
}
