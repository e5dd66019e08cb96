package system

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystemWriteFileAtomic(t *testing.T) {
	fsys := NewFileSystem()
	dir := t.TempDir()
	path := filepath.Join(dir, "alice.conf")

	if err := fsys.WriteFile(path, []byte("first"), 0600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	if err := fsys.WriteFile(path, []byte("second"), 0600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want second", data)
	}

	perms, err := fsys.GetPermissions(path)
	if err != nil {
		t.Fatalf("GetPermissions() error: %v", err)
	}
	if perms != 0600 {
		t.Errorf("permissions = %v, want 0600", perms)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestFileSystemWriteFileMissingDir(t *testing.T) {
	fsys := NewFileSystem()
	err := fsys.WriteFile(filepath.Join(t.TempDir(), "missing", "a.conf"), []byte("x"), 0600)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestFileSystemEnsureDirectory(t *testing.T) {
	fsys := NewFileSystem()
	dir := filepath.Join(t.TempDir(), "a", "b")

	if err := fsys.EnsureDirectory(dir, 0700); err != nil {
		t.Fatalf("EnsureDirectory() error: %v", err)
	}
	if err := fsys.EnsureDirectory(dir, 0700); err != nil {
		t.Fatalf("EnsureDirectory() second call error: %v", err)
	}
	exists, err := fsys.DirectoryExists(dir)
	if err != nil || !exists {
		t.Errorf("DirectoryExists() = %v, %v", exists, err)
	}
	perms, _ := fsys.GetPermissions(dir)
	if perms != 0700 {
		t.Errorf("permissions = %v, want 0700", perms)
	}

	file := filepath.Join(dir, "file")
	os.WriteFile(file, []byte("x"), 0600)
	if err := fsys.EnsureDirectory(file, 0700); err == nil {
		t.Error("EnsureDirectory() on a regular file should fail")
	}
}

func TestFileSystemRemoveAndList(t *testing.T) {
	fsys := NewFileSystem()
	dir := t.TempDir()
	for _, name := range []string{"b.conf", "a.conf"} {
		if err := fsys.WriteFile(filepath.Join(dir, name), []byte("x"), 0600); err != nil {
			t.Fatalf("WriteFile() error: %v", err)
		}
	}
	os.Mkdir(filepath.Join(dir, "sub"), 0700)

	names, err := fsys.ListDirectory(dir)
	if err != nil {
		t.Fatalf("ListDirectory() error: %v", err)
	}
	if len(names) != 2 || names[0] != "a.conf" || names[1] != "b.conf" {
		t.Errorf("ListDirectory() = %v", names)
	}

	if err := fsys.RemoveFile(filepath.Join(dir, "a.conf")); err != nil {
		t.Fatalf("RemoveFile() error: %v", err)
	}
	err = fsys.RemoveFile(filepath.Join(dir, "a.conf"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("second RemoveFile() should wrap ErrNotExist, got %v", err)
	}
	if exists, _ := fsys.FileExists(filepath.Join(dir, "a.conf")); exists {
		t.Error("file should be gone")
	}
}

func TestMockFileSystem(t *testing.T) {
	m := NewMockFileSystem()
	var _ FileSystemManager = m

	if err := m.WriteFile("/cfg/a.conf", []byte("x"), 0600); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("write without dir should fail with ErrNotExist, got %v", err)
	}

	m.EnsureDirectory("/cfg", 0700)
	if err := m.WriteFile("/cfg/a.conf", []byte("x"), 0600); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	names, _ := m.ListDirectory("/cfg")
	if len(names) != 1 || names[0] != "a.conf" {
		t.Errorf("ListDirectory() = %v", names)
	}

	if err := m.RemoveFile("/cfg/a.conf"); err != nil {
		t.Fatalf("RemoveFile() error: %v", err)
	}
	if _, err := m.ReadFile("/cfg/a.conf"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ReadFile() after remove = %v", err)
	}
}
