// Package config manages the persistent settings of wg-provision: a small
// KEY=value file (by default ~/.wg-provision.conf) plus the typed Settings
// derived from it. All operations are safe for concurrent use.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultFileName is the name of the config file in the user's home.
const DefaultFileName = ".wg-provision.conf"

// Config is a thread-safe KEY=value store backed by a file.
type Config struct {
	filePath string
	data     map[string]string
	loaded   bool
	mu       sync.RWMutex
}

// New creates a Config for filePath. An empty path selects
// ~/.wg-provision.conf, or ./.wg-provision.conf when no home is known.
func New(filePath string) *Config {
	if filePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		filePath = filepath.Join(home, DefaultFileName)
	}

	return &Config{
		filePath: filePath,
		data:     make(map[string]string),
	}
}

// ensureLoaded loads the file once. Callers must not hold c.mu.
func (c *Config) ensureLoaded() error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return nil
	}
	return c.loadLocked()
}

// Load (re)reads the file. A missing file is treated as empty.
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked()
}

func (c *Config) loadLocked() error {
	file, err := os.Open(c.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			c.loaded = true
			return nil
		}
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	data := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			data[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	c.data = data
	c.loaded = true
	return nil
}

// Save writes the configuration with an atomic temp-file rename.
func (c *Config) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

func (c *Config) saveLocked() error {
	dir := filepath.Dir(c.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(c.filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := tmpFile.Chmod(0600); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to set permissions on temp file: %w", err)
	}

	w := bufio.NewWriter(tmpFile)
	fmt.Fprintln(w, "# wg-provision configuration")
	fmt.Fprintf(w, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintln(w)

	keys := make([]string, 0, len(c.data))
	for key := range c.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(w, "%s=%s\n", key, c.data[key])
	}

	if err := w.Flush(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, c.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file to config: %w", err)
	}
	return nil
}

// Get retrieves a value that was set explicitly.
func (c *Config) Get(key string) (string, error) {
	if err := c.ensureLoaded(); err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	value, exists := c.data[key]
	if !exists {
		return "", fmt.Errorf("config key not found: %s", key)
	}
	return value, nil
}

// GetOrDefault returns the stored value, then the Defaults entry, then
// defaultValue.
func (c *Config) GetOrDefault(key, defaultValue string) string {
	if err := c.ensureLoaded(); err != nil {
		return defaultValue
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if value, exists := c.data[key]; exists {
		return value
	}
	if tableDefault, exists := Defaults[key]; exists {
		return tableDefault
	}
	return defaultValue
}

// Set stores a value and saves the file.
func (c *Config) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		if err := c.loadLocked(); err != nil {
			return fmt.Errorf("failed to load existing config before set: %w", err)
		}
	}

	c.data[key] = value
	return c.saveLocked()
}

// Exists reports whether key was set explicitly.
func (c *Config) Exists(key string) bool {
	if err := c.ensureLoaded(); err != nil {
		return false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.data[key]
	return exists
}

// GetAll returns a copy of the explicitly set values.
func (c *Config) GetAll() map[string]string {
	if err := c.ensureLoaded(); err != nil {
		return map[string]string{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make(map[string]string, len(c.data))
	for k, v := range c.data {
		result[k] = v
	}
	return result
}

// Delete removes a key and saves the file.
func (c *Config) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.loaded {
		if err := c.loadLocked(); err != nil {
			return fmt.Errorf("failed to load existing config before delete: %w", err)
		}
	}

	delete(c.data, key)
	return c.saveLocked()
}

// Unset removes a known setting so its default applies again. Unsetting a
// key that is not in the file is a no-op; unknown keys are an error.
func (c *Config) Unset(key string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	if !c.Exists(key) {
		return nil
	}
	return c.Delete(key)
}

// FilePath returns the configuration file path.
func (c *Config) FilePath() string {
	return c.filePath
}
