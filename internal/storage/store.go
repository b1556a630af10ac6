package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Store is a string-keyed JSON key-value store backed by a single file.
// Every mutation writes the whole file back synchronously, so a value that
// Set returned nil for is on disk. A Store is not safe for concurrent use;
// all readtrack access is single-goroutine.
type Store struct {
	path string
	data map[string]json.RawMessage
}

// Open loads the store at path. A missing file yields an empty store, not
// an error — the first Set creates it.
func Open(path string) (*Store, error) {
	s := &Store{path: path, data: map[string]json.RawMessage{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading data file: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parsing data file %s: %w", path, err)
	}
	return s, nil
}

// Get unmarshals the value for key into out. The second return is false if
// the key is absent.
func (s *Store) Get(key string, out interface{}) (bool, error) {
	raw, ok := s.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, fmt.Errorf("decoding %q: %w", key, err)
	}
	return true, nil
}

// Set stores v under key and persists the store.
func (s *Store) Set(key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	s.data[key] = raw
	return s.flush()
}

// Delete removes key and persists the store. Deleting an absent key is a
// no-op.
func (s *Store) Delete(key string) error {
	if !s.Has(key) {
		return nil
	}
	delete(s.data, key)
	return s.flush()
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	_, ok := s.data[key]
	return ok
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// flush writes the full store to disk via a temp file and rename, so a
// crash mid-write never leaves a torn data file.
func (s *Store) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0600); err != nil {
		return fmt.Errorf("writing data file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
