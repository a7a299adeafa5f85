// Package inmemory is a process-local cache driver backed by patrickmn/go-cache.
// Entries do not survive a restart; use the file, redis or mysql drivers for durability.
package inmemory

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ritmofit/cupos/pkg/cache/cacheerrors"
)

// Config holds expiration settings expressed in seconds
type Config struct {
	DefaultExpiration int `mapstructure:"defaultExpiration"`
	CleanupInterval   int `mapstructure:"cleanupInterval"`
}

type Cache struct {
	client *gocache.Cache
}

// NewCache creates an in-memory cache. Zero values fall back to no default
// expiration and a ten minute cleanup interval.
func NewCache(config *Config) (*Cache, error) {
	if config == nil {
		return nil, fmt.Errorf("inmemory cache config is required")
	}
	if config.DefaultExpiration < 0 || config.CleanupInterval < 0 {
		return nil, fmt.Errorf("inmemory cache expiration settings must not be negative")
	}

	defaultExpiration := gocache.NoExpiration
	if config.DefaultExpiration > 0 {
		defaultExpiration = time.Duration(config.DefaultExpiration) * time.Second
	}
	cleanupInterval := 10 * time.Minute
	if config.CleanupInterval > 0 {
		cleanupInterval = time.Duration(config.CleanupInterval) * time.Second
	}

	return &Cache{
		client: gocache.New(defaultExpiration, cleanupInterval),
	}, nil
}

func (c *Cache) Get(_ context.Context, key string) (interface{}, error) {
	val, found := c.client.Get(key)
	if !found {
		return nil, fmt.Errorf("%w: %s", cacheerrors.ErrKeyNotFound, key)
	}
	return val, nil
}

// Set stores the value; a negative expiration keeps it forever and zero applies the default.
func (c *Cache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	if expiration < 0 {
		expiration = gocache.NoExpiration
	}
	c.client.Set(key, value, expiration)
	return nil
}

func (c *Cache) Delete(_ context.Context, key string) error {
	c.client.Delete(key)
	return nil
}

// ItemCount reports the number of stored entries, including expired ones not yet cleaned up
func (c *Cache) ItemCount() int {
	return c.client.ItemCount()
}
