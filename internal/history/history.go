package history

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultLimit is the number of entries kept when no limit is given.
const DefaultLimit = 500

// FileStore keeps entered expressions in a file, one per line, oldest first.
type FileStore struct {
	path    string
	limit   int
	entries []string
	mu      sync.RWMutex
}

// DefaultPath returns $HOME/.deriv/history.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".deriv", "history"), nil
}

// Open loads the history file at path, creating its directory if needed. A
// missing file starts an empty history.
func Open(path string, limit int) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	s := &FileStore{path: path, limit: limit}

	f, err := os.Open(path) // #nosec G304 - path is controlled
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			s.entries = append(s.entries, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	s.trim()
	return s, nil
}

// Add appends entry unless it repeats the latest one, then saves the file.
func (s *FileStore) Add(entry string) error {
	entry = strings.TrimSpace(entry)
	if entry == "" || strings.ContainsAny(entry, "\r\n") {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.entries); n > 0 && s.entries[n-1] == entry {
		return nil
	}
	s.entries = append(s.entries, entry)
	s.trim()
	return s.save()
}

// Entries returns a copy of the history, oldest first.
func (s *FileStore) Entries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.entries...)
}

// Len returns the number of stored entries.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Clear drops every entry and removes the file.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing history: %w", err)
	}
	return nil
}

// Path returns the file backing the store.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) trim() {
	if over := len(s.entries) - s.limit; over > 0 {
		s.entries = s.entries[over:]
	}
}

// save writes through a temporary file so a crash never leaves a torn
// history behind.
func (s *FileStore) save() error {
	tmp := s.path + ".tmp"
	data := strings.Join(s.entries, "\n") + "\n"
	if err := os.WriteFile(tmp, []byte(data), 0600); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}
