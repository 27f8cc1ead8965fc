package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/bteditor/pkg/errors"
)

// FileStore keeps one JSON file per project in a directory. List ignores
// anything that is not a .json file, including in-progress writes.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates a new file-based project store.
// If baseDir is empty, defaults to ~/.local/share/bteditor/projects/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		baseDir = filepath.Join(home, ".local", "share", "bteditor", "projects")
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) projectPath(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

func (s *FileStore) Save(ctx context.Context, p *Project) (err error) {
	defer track(ctx, "file", "save", time.Now(), &err)
	if err := errors.ValidateProjectName(p.Name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := Marshal(p)
	if err != nil {
		return err
	}
	return writeAtomic(s.projectPath(p.Name), data)
}

// writeAtomic replaces path with data through a temporary file in the same
// directory, so a crash never leaves a half-written project behind.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".project-*")
	if err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write project file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("write project file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func (s *FileStore) Load(ctx context.Context, name string) (p *Project, err error) {
	defer track(ctx, "file", "load", time.Now(), &err)
	if err := errors.ValidateProjectName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.projectPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read project file: %w", err)
	}
	return Unmarshal(data)
}

func (s *FileStore) Delete(ctx context.Context, name string) (err error) {
	defer track(ctx, "file", "delete", time.Now(), &err)
	if err := errors.ValidateProjectName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.projectPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove project file: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context) (names []string, err error) {
	defer track(ctx, "file", "list", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read project dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	slices.Sort(names)
	return names, nil
}

func (s *FileStore) Close() error { return nil }

// Path returns the base directory for project files.
func (s *FileStore) Path() string {
	return s.baseDir
}

var _ Store = (*FileStore)(nil)
