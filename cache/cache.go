// Package cache memoises import resolution: which file an import path
// resolved to, seen from a given directory. The cache can be persisted as
// JSON so that repeated runs skip the search.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ImportCache maps "<dir>|<import path>" to a resolved file path.
type ImportCache struct {
	mu        sync.RWMutex
	saveMu    sync.Mutex // serializes Save
	cacheData map[string]string
	filePath  string // empty: in-memory only
	rootDir   string // persisted paths are stored relative to this directory
	dirty     bool
}

// NewImportCache creates a new ImportCache.
//
// rootDir is the project's root directory; persisted file paths are relative
// to it. cachePath is the JSON file used by Load and Save. If it is empty
// the cache lives in memory only.
func NewImportCache(rootDir string, cachePath string) *ImportCache {
	return &ImportCache{
		cacheData: make(map[string]string),
		filePath:  cachePath,
		rootDir:   rootDir,
	}
}

// Key builds the cache key of path imported from dir.
func Key(dir, path string) string {
	return filepath.ToSlash(dir) + "|" + path
}

// Load reads the cache file. A missing or empty file is not an error. A
// corrupted file is reported and the cache starts empty.
func (c *ImportCache) Load() error {
	if c.filePath == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache file %s: %w", c.filePath, err)
	}
	if len(data) == 0 {
		return nil
	}

	loaded := make(map[string]string)
	if err := json.Unmarshal(data, &loaded); err != nil {
		c.cacheData = make(map[string]string)
		return fmt.Errorf("failed to unmarshal cache file %s: %w", c.filePath, err)
	}
	c.cacheData = loaded
	return nil
}

// Save writes the cache file if anything changed since Load. The file is
// replaced atomically, so a reader never sees a partial write.
func (c *ImportCache) Save() error {
	if c.filePath == "" {
		return nil
	}
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	if !c.dirty {
		c.mu.Unlock()
		return nil
	}
	data, err := json.MarshalIndent(c.cacheData, "", "  ")
	c.dirty = false
	c.mu.Unlock()
	if err != nil {
		c.markDirty()
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := writeFileAtomic(c.filePath, data); err != nil {
		c.markDirty()
		return err
	}
	return nil
}

func (c *ImportCache) markDirty() {
	c.mu.Lock()
	c.dirty = true
	c.mu.Unlock()
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create cache directory for %s: %w", path, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file %s: %w", path, err)
	}
	if err := tmp.Chmod(0o640); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace cache file %s: %w", path, err)
	}
	return nil
}

// Get returns the file path stored for key as an absolute path when the
// stored path is relative to the root directory.
func (c *ImportCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.cacheData[key]
	if !ok {
		return "", false
	}
	if filepath.IsAbs(p) || c.rootDir == "" {
		return filepath.FromSlash(p), true
	}
	return filepath.Join(c.rootDir, filepath.FromSlash(p)), true
}

// Set stores filename for key. Files under the root directory are stored
// relative to it.
func (c *ImportCache) Set(key string, filename string) {
	stored := filepath.Clean(filename)
	if c.rootDir != "" && filepath.IsAbs(stored) {
		root := filepath.Clean(c.rootDir)
		if rel, err := filepath.Rel(root, stored); err == nil && !strings.HasPrefix(rel, "..") {
			stored = rel
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	stored = filepath.ToSlash(stored)
	if c.cacheData[key] != stored {
		c.cacheData[key] = stored
		c.dirty = true
	}
}

// Delete drops key, typically because the cached file disappeared.
func (c *ImportCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.cacheData[key]; ok {
		delete(c.cacheData, key)
		c.dirty = true
	}
}

// Len returns the number of entries.
func (c *ImportCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cacheData)
}

// FilePath returns the path to the cache file.
func (c *ImportCache) FilePath() string {
	return c.filePath
}
