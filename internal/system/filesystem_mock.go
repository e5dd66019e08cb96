package system

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MockFileSystem is an in-memory FileSystemManager for tests.
// Directories must be registered with EnsureDirectory (or Dirs) before
// files can be written below them, mirroring the real behaviour.
type MockFileSystem struct {
	mu           sync.Mutex
	WrittenFiles map[string][]byte
	Dirs         map[string]bool
	// WriteErr, when set, is returned by every WriteFile call.
	WriteErr error
	// RemoveErr, when set, is returned by every RemoveFile call.
	RemoveErr error
}

// NewMockFileSystem creates a new MockFileSystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		WrittenFiles: make(map[string][]byte),
		Dirs:         make(map[string]bool),
	}
}

// WriteFile captures the content that would be written to a file.
func (m *MockFileSystem) WriteFile(path string, content []byte, perms os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	if !m.Dirs[filepath.Dir(path)] {
		return fmt.Errorf("failed to create temp file: %w", fs.ErrNotExist)
	}
	m.WrittenFiles[path] = append([]byte(nil), content...)
	return nil
}

// ReadFile returns previously written content.
func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.WrittenFiles[path]
	if !ok {
		return nil, fmt.Errorf("failed to read %s: %w", path, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

// RemoveFile deletes a captured file.
func (m *MockFileSystem) RemoveFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	if _, ok := m.WrittenFiles[path]; !ok {
		return fmt.Errorf("failed to remove file %s: %w", path, fs.ErrNotExist)
	}
	delete(m.WrittenFiles, path)
	return nil
}

// FileExists reports whether a file was captured.
func (m *MockFileSystem) FileExists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.WrittenFiles[path]
	return ok, nil
}

// DirectoryExists reports whether a directory was registered.
func (m *MockFileSystem) DirectoryExists(path string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Dirs[path], nil
}

// EnsureDirectory registers a directory.
func (m *MockFileSystem) EnsureDirectory(path string, perms os.FileMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Dirs[path] = true
	return nil
}

// ListDirectory returns the captured file names directly below path.
func (m *MockFileSystem) ListDirectory(path string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.Dirs[path] {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, fs.ErrNotExist)
	}
	var names []string
	for p := range m.WrittenFiles {
		if filepath.Dir(p) == path {
			names = append(names, filepath.Base(p))
		}
	}
	sort.Strings(names)
	return names, nil
}
