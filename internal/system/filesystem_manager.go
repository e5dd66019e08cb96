package system

import "os"

// FileSystemManager defines the interface for file system operations.
// This allows for mocking the file system in tests.
type FileSystemManager interface {
	WriteFile(path string, content []byte, perms os.FileMode) error
	ReadFile(path string) ([]byte, error)
	RemoveFile(path string) error
	FileExists(path string) (bool, error)
	DirectoryExists(path string) (bool, error)
	EnsureDirectory(path string, perms os.FileMode) error
	ListDirectory(path string) ([]string, error)
}
