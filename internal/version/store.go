package version

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Store persists the version map: for every manifest key the unix timestamp
// of the archive that was last downloaded and extracted. The map is saved
// after each applied patch, so an interrupted run loses at most the entry
// that was in flight.
type Store struct {
	path    string
	mu      sync.Mutex
	entries map[string]int64
}

// NewStore creates a store backed by the given file and loads its contents.
// A missing file yields an empty map; an unreadable file is logged and also
// treated as empty, which re-downloads everything on the next run.
func NewStore(path string) *Store {
	s := &Store{
		path:    path,
		entries: make(map[string]int64),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Version map %s could not be read (%v), starting empty", path, err)
		}
		return s
	}

	if err := json.Unmarshal(data, &s.entries); err != nil {
		log.Printf("Version map %s is not valid JSON (%v), starting empty", path, err)
		s.entries = make(map[string]int64)
	}

	return s
}

// Get returns the recorded timestamp for a manifest key, zero time if absent
func (s *Store) Get(key string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	stamp, ok := s.entries[key]
	if !ok || stamp == 0 {
		return time.Time{}
	}
	return time.Unix(stamp, 0)
}

// Set records the timestamp for a manifest key and persists the map
func (s *Store) Set(key string, stamp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = stamp.Unix()
	return s.save()
}

// Len returns the number of recorded entries
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// save writes the map to a temp file and renames it into place, so a crash
// mid-write never leaves a truncated version map. Callers hold s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode version map: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write version map to %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace version map %s: %w", s.path, err)
	}

	return nil
}
