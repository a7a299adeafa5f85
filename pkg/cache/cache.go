/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cache defines the key/value storage contract used by the seat store
// and the constructor that selects a concrete driver from configuration.
package cache

//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ritmofit/cupos/pkg/cache/cacheerrors"
	"github.com/ritmofit/cupos/pkg/cache/file"
	"github.com/ritmofit/cupos/pkg/cache/inmemory"
	"github.com/ritmofit/cupos/pkg/cache/mysql"
	"github.com/ritmofit/cupos/pkg/cache/redis"
)

// NoExpiration keeps an entry until it is deleted explicitly
const NoExpiration time.Duration = -1

const (
	DriverInMemory = "inmemory"
	DriverRedis    = "redis"
	DriverFile     = "file"
	DriverMySQL    = "mysql"
)

// ErrKeyNotFound is returned, possibly wrapped, when a key is absent
var ErrKeyNotFound = cacheerrors.ErrKeyNotFound

// Cache is the minimal key/value contract every driver satisfies.
// Values are stored as strings by the persistent drivers.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Config selects and configures a cache driver
type Config struct {
	Driver   string          `mapstructure:"driver"`
	InMemory inmemory.Config `mapstructure:"inmemory"`
	Redis    redis.Config    `mapstructure:"redis"`
	File     file.Config     `mapstructure:"file"`
	MySQL    mysql.Config    `mapstructure:"mysql"`
}

// New returns the cache driver named by config.Driver
func New(config *Config) (Cache, error) {
	if config == nil {
		return nil, fmt.Errorf("cache config is required")
	}

	switch strings.ToLower(config.Driver) {
	case DriverInMemory, "memory", "":
		c, err := inmemory.NewCache(&config.InMemory)
		if err != nil {
			return nil, err
		}
		return c, nil
	case DriverRedis:
		c, err := redis.NewCache(&config.Redis)
		if err != nil {
			return nil, err
		}
		return c, nil
	case DriverFile:
		c, err := file.NewCache(&config.File)
		if err != nil {
			return nil, err
		}
		return c, nil
	case DriverMySQL:
		c, err := mysql.NewCache(&config.MySQL)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported cache driver: %s", config.Driver)
	}
}

// Compile-time interface compliance checks
var (
	_ Cache = (*inmemory.Cache)(nil)
	_ Cache = (*redis.Cache)(nil)
	_ Cache = (*file.Cache)(nil)
	_ Cache = (*mysql.Cache)(nil)
)
