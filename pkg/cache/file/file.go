// Package file implements a durable cache driver that keeps every entry in a
// single JSON document on the local filesystem.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ritmofit/cupos/pkg/cache/cacheerrors"
)

// Config points the driver at its backing file
type Config struct {
	Path string `mapstructure:"path"`
}

type entry struct {
	Value     string     `json:"value"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Cache re-reads the file on every call so that separate processes and
// restarts observe the latest written state.
type Cache struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewCache creates the parent directory of config.Path if needed
func NewCache(config *Config) (*Cache, error) {
	if config == nil || config.Path == "" {
		return nil, fmt.Errorf("file cache: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(config.Path), 0o755); err != nil {
		return nil, fmt.Errorf("file cache: creating directory: %w", err)
	}
	return &Cache{path: config.Path, now: time.Now}, nil
}

func (c *Cache) Get(_ context.Context, key string) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.load()
	if err != nil {
		return nil, err
	}
	e, ok := entries[key]
	if !ok || c.expired(e) {
		return nil, fmt.Errorf("%w: %s", cacheerrors.ErrKeyNotFound, key)
	}
	return e.Value, nil
}

// Set persists the value; a non-positive expiration keeps it forever
func (c *Cache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	s, err := cacheerrors.ToString(value)
	if err != nil {
		return fmt.Errorf("file cache: %w: %T", err, value)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.load()
	if err != nil {
		return err
	}
	e := entry{Value: s}
	if expiration > 0 {
		expiresAt := c.now().Add(expiration)
		e.ExpiresAt = &expiresAt
	}
	entries[key] = e
	return c.save(entries)
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.load()
	if err != nil {
		return err
	}
	if _, ok := entries[key]; !ok {
		return nil
	}
	delete(entries, key)
	return c.save(entries)
}

func (c *Cache) expired(e entry) bool {
	return e.ExpiresAt != nil && !c.now().Before(*e.ExpiresAt)
}

func (c *Cache) load() (map[string]entry, error) {
	entries := make(map[string]entry)
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entries, nil
		}
		return nil, fmt.Errorf("file cache: reading %s: %w", c.path, err)
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("file cache: parsing %s: %w", c.path, err)
	}
	return entries, nil
}

// save writes to a temporary file and renames it over the target so a crash
// never leaves a half-written document behind.
func (c *Cache) save(entries map[string]entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("file cache: marshaling: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("file cache: creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("file cache: writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("file cache: closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("file cache: replacing %s: %w", c.path, err)
	}
	return nil
}
