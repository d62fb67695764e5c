package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const fileStoreName = "local_storage.json"

// FileStore persists all keys as one JSON object on disk.
// Every write rewrites the file through a temp file + rename.
type FileStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// Ensure FileStore implements KeyValueStore
var _ KeyValueStore = (*FileStore)(nil)

// NewFileStore opens (or creates) the store file inside dir.
// An unreadable or malformed file is treated as empty.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local store directory: %w", err)
	}

	s := &FileStore{
		path:   filepath.Join(dir, fileStoreName),
		values: make(map[string]string),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("⚠️  FileStore: could not read %s, starting empty: %v", s.path, err)
		}
		return s, nil
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		log.Printf("⚠️  FileStore: malformed data in %s, starting empty: %v", s.path, err)
		s.values = make(map[string]string)
	}

	log.Printf("✓ FileStore: loaded %d keys from %s", len(s.values), s.path)
	return s, nil
}

func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *FileStore) Set(_ context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.values[key]
	s.values[key] = value
	if err := s.flush(); err != nil {
		if existed {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.values[key]
	if !existed {
		return nil
	}
	delete(s.values, key)
	if err := s.flush(); err != nil {
		s.values[key] = prev
		return err
	}
	return nil
}

// flush writes the current map to disk; caller holds mu
func (s *FileStore) flush() error {
	data, err := json.Marshal(s.values)
	if err != nil {
		return fmt.Errorf("failed to encode local store: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write local store: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace local store: %w", err)
	}
	return nil
}
