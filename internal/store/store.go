// Package store persists client config documents, one file per client at
// <dir>/<client>.conf.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zoro11031/wg-provision/internal/common"
	"github.com/zoro11031/wg-provision/internal/system"
	"github.com/zoro11031/wg-provision/internal/wgconfig"
)

const (
	configExt = ".conf"
	filePerm  = 0o600
	dirPerm   = 0o700
)

// Sentinel errors; match with errors.Is.
var (
	ErrNotFound   = errors.New("client config not found")
	ErrDirMissing = errors.New("config directory does not exist")
)

// Store reads and writes client configs below a base directory.
// Operations on the same client are serialized; different clients proceed
// in parallel.
type Store struct {
	dir string
	fs  system.FileSystemManager

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Store rooted at dir.
func New(dir string, fsm system.FileSystemManager) *Store {
	if fsm == nil {
		fsm = system.NewFileSystem()
	}
	return &Store{
		dir:   filepath.Clean(dir),
		fs:    fsm,
		locks: make(map[string]*sync.Mutex),
	}
}

// Dir returns the base directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) lock(client string) func() {
	s.mu.Lock()
	l, ok := s.locks[client]
	if !ok {
		l = &sync.Mutex{}
		s.locks[client] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Path returns the file path for client after validating the name.
func (s *Store) Path(client string) (string, error) {
	if err := common.ValidateClientName(client); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, client+configExt), nil
}

// EnsureDir creates the base directory with owner-only permissions.
func (s *Store) EnsureDir() error {
	return s.fs.EnsureDirectory(s.dir, dirPerm)
}

// Write persists doc for client, replacing any existing file without
// confirmation. The base directory must already exist.
func (s *Store) Write(client string, doc wgconfig.Document) (string, error) {
	path, err := s.Path(client)
	if err != nil {
		return "", err
	}

	exists, err := s.fs.DirectoryExists(s.dir)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("%w: %s", ErrDirMissing, s.dir)
	}

	unlock := s.lock(client)
	defer unlock()

	if err := s.fs.WriteFile(path, doc.Bytes(), filePerm); err != nil {
		return "", fmt.Errorf("failed to write config for %s: %w", client, err)
	}
	return path, nil
}

// Read loads the document stored for client.
func (s *Store) Read(client string) (wgconfig.Document, error) {
	path, err := s.Path(client)
	if err != nil {
		return wgconfig.Document{}, err
	}

	unlock := s.lock(client)
	defer unlock()

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return wgconfig.Document{}, fmt.Errorf("%w: %s", ErrNotFound, client)
		}
		return wgconfig.Document{}, err
	}
	return wgconfig.NewDocument(client, string(data)), nil
}

// Delete removes the file for client. A missing file yields ErrNotFound.
func (s *Store) Delete(client string) error {
	path, err := s.Path(client)
	if err != nil {
		return err
	}

	unlock := s.lock(client)
	defer unlock()

	if err := s.fs.RemoveFile(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, client)
		}
		return err
	}
	return nil
}

// List returns the names of all stored clients, sorted.
func (s *Store) List() ([]string, error) {
	exists, err := s.fs.DirectoryExists(s.dir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDirMissing, s.dir)
	}

	names, err := s.fs.ListDirectory(s.dir)
	if err != nil {
		return nil, err
	}

	var clients []string
	for _, name := range names {
		if !strings.HasSuffix(name, configExt) {
			continue
		}
		client := strings.TrimSuffix(name, configExt)
		if common.ValidateClientName(client) != nil {
			continue
		}
		clients = append(clients, client)
	}
	return clients, nil
}
