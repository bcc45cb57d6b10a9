package mocks

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/qtforge/internal/ports"
)

// FileSystem is a thread-safe in-memory test double for ports.FileSystem.
// Paths are cleaned before use; adding a file also adds its parent directories.
type FileSystem struct {
	mu     sync.RWMutex
	files  map[string][]byte
	dirs   map[string]bool
	cwd    string
	chdirs []string
}

// NewFileSystem creates a new FileSystem mock whose working directory is "/".
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  map[string]bool{clean("/"): true},
		cwd:   clean("/"),
	}
}

func clean(path string) string {
	return filepath.Clean(filepath.FromSlash(path))
}

// AddFile adds a file (and its parent directories) to the mock filesystem.
func (m *FileSystem) AddFile(path string, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = clean(path)
	m.files[path] = []byte(content)
	m.addParents(path)
}

// AddDir adds a directory (and its parents) to the mock filesystem.
func (m *FileSystem) AddDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = clean(path)
	m.dirs[path] = true
	m.addParents(path)
}

func (m *FileSystem) addParents(path string) {
	for dir := filepath.Dir(path); !m.dirs[dir]; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
		if filepath.Dir(dir) == dir {
			return
		}
	}
}

func notExist(op, path string) error {
	return &fs.PathError{Op: op, Path: path, Err: os.ErrNotExist}
}

// ReadFile reads a file from the mock filesystem.
func (m *FileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	content, ok := m.files[clean(path)]
	if !ok {
		return nil, notExist("open", path)
	}
	return append([]byte(nil), content...), nil
}

// WriteFile writes a file; its parent directory must exist.
func (m *FileSystem) WriteFile(path string, data []byte, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = clean(path)
	if !m.dirs[filepath.Dir(path)] {
		return notExist("open", path)
	}
	m.files[path] = append([]byte(nil), data...)
	return nil
}

// Exists checks if a file or directory exists in the mock filesystem.
func (m *FileSystem) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = clean(path)
	_, isFile := m.files[path]
	return isFile || m.dirs[path]
}

// IsDir checks if a path is a directory in the mock filesystem.
func (m *FileSystem) IsDir(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dirs[clean(path)]
}

// MkdirAll creates a directory in the mock filesystem.
func (m *FileSystem) MkdirAll(path string, _ os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = clean(path)
	if _, isFile := m.files[path]; isFile {
		return fmt.Errorf("mkdir %s: not a directory", path)
	}
	m.dirs[path] = true
	m.addParents(path)
	return nil
}

// GetFileInfo returns metadata about a path in the mock filesystem.
func (m *FileSystem) GetFileInfo(path string) (ports.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path = clean(path)

	if content, ok := m.files[path]; ok {
		return ports.FileInfo{
			Size:    int64(len(content)),
			Mode:    0o644,
			ModTime: time.Now(),
		}, nil
	}

	if m.dirs[path] {
		return ports.FileInfo{
			Mode:    os.ModeDir | 0o755,
			ModTime: time.Now(),
			IsDir:   true,
		}, nil
	}

	return ports.FileInfo{}, notExist("stat", path)
}

// Abs resolves path against the mock working directory.
func (m *FileSystem) Abs(path string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return clean(path), nil
	}
	return filepath.Join(m.cwd, path), nil
}

// Chdir changes the mock working directory and records the call.
func (m *FileSystem) Chdir(dir string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir = clean(dir)
	if !m.dirs[dir] {
		return notExist("chdir", dir)
	}
	m.cwd = dir
	m.chdirs = append(m.chdirs, dir)
	return nil
}

// Getwd returns the mock working directory.
func (m *FileSystem) Getwd() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cwd, nil
}

// Chdirs returns every directory passed to a successful Chdir, in order.
func (m *FileSystem) Chdirs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.chdirs...)
}

// Ensure FileSystem implements ports.FileSystem.
var _ ports.FileSystem = (*FileSystem)(nil)
