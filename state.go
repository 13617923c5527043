package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const defaultPlayerFile = "default-player"

// CacheDir is the per-user cache directory for mediapick
func CacheDir() string {
	return filepath.Join(cacheHome(), "mediapick")
}

// https://specifications.freedesktop.org/basedir/latest/#variables
func cacheHome() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return os.TempDir()
		}
		dir = filepath.Join(home, ".cache")
	}
	return dir
}

// DefaultPlayerStore persists the identifier of the last selected session.
// Concurrent writers are last-writer-wins; readers never see a torn write.
type DefaultPlayerStore struct {
	dir string
}

func NewDefaultPlayerStore(dir string) *DefaultPlayerStore {
	return &DefaultPlayerStore{dir: dir}
}

func (s *DefaultPlayerStore) path() string {
	return filepath.Join(s.dir, defaultPlayerFile)
}

// Load returns the stored identifier, or "" when none has been saved
func (s *DefaultPlayerStore) Load() (string, error) {
	data, err := os.ReadFile(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read default player: %w", err)
	}
	return string(data), nil
}

// Save writes id to a temp file in the same directory and renames it over
// the record
func (s *DefaultPlayerStore) Save(id string) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	tmp := filepath.Join(s.dir, "."+defaultPlayerFile+"."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, []byte(id), 0o644); err != nil {
		return fmt.Errorf("write default player: %w", err)
	}
	if err := os.Rename(tmp, s.path()); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace default player: %w", err)
	}
	return nil
}
