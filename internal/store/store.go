// Package store persists the full set of posts in a single JSON file.
//
// The backing file holds one JSON array of posts with no ordering
// guarantee; readers re-sort on every list. The file grows for the
// lifetime of the process with no compaction or retention limit. Writes
// are whole-file overwrites, so a crash mid-write can corrupt the file.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"driftgram/internal/models"
)

// FileStore reads and writes posts to a single JSON file. An in-process
// mutex serializes the read-modify-write append; this is a hardening over
// the original unsynchronized store and does not protect against multiple
// processes sharing one file.
type FileStore struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileStore creates a FileStore backed by the given path. The parent
// directory is created if missing; the file itself is created lazily on
// the first append.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	return &FileStore{path: path, logger: logger}, nil
}

// ReadAll returns every post in the store. A missing, unreadable, or
// corrupt backing file yields an empty slice; read failures are logged
// and never surfaced to the caller.
func (s *FileStore) ReadAll() []models.Post {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("post store unreadable, treating as empty",
				slog.String("path", s.path),
				slog.String("error", err.Error()))
		}
		return []models.Post{}
	}

	var posts []models.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		s.logger.Warn("post store corrupt, treating as empty",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return []models.Post{}
	}
	return posts
}

// ReadAllSorted returns every post ordered by CreatedAt descending. Order
// is reconstructed at read time; the file itself is unordered.
func (s *FileStore) ReadAllSorted() []models.Post {
	posts := s.ReadAll()
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt > posts[j].CreatedAt
	})
	return posts
}

// Append reads the current set, appends the post, and overwrites the
// backing file with the full serialized array.
func (s *FileStore) Append(post models.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	posts := s.ReadAll()
	posts = append(posts, post)

	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal posts: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write post store: %w", err)
	}
	return nil
}

// Count returns the number of posts currently in the store.
func (s *FileStore) Count() int {
	return len(s.ReadAll())
}
