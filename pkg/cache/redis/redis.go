package redis

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ritmofit/cupos/pkg/cache/cacheerrors"
)

const defaultPingTimeout = 2 * time.Second

// Config holds the connection parameters for the redis driver
type Config struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	Database int    `mapstructure:"database"`
	TLS      bool   `mapstructure:"tls"`
	PoolSize int    `mapstructure:"poolSize"`
	// DialTimeout in seconds
	DialTimeout int `mapstructure:"dialTimeout"`
	// Instrument enables redisotel tracing and metrics
	Instrument bool `mapstructure:"instrument"`
}

type Cache struct {
	client *goredis.Client
}

// NewCache connects to redis and verifies the connection with a ping
func NewCache(config *Config) (*Cache, error) {
	if config == nil {
		return nil, fmt.Errorf("redis cache config is required")
	}

	host := config.Host
	if host == "" {
		host = "localhost"
	}
	port := config.Port
	if port == "" {
		port = "6379"
	}

	opts := &goredis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: config.Password,
		DB:       config.Database,
		PoolSize: config.PoolSize,
	}
	if config.DialTimeout > 0 {
		opts.DialTimeout = time.Duration(config.DialTimeout) * time.Second
	}
	if config.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := goredis.NewClient(opts)

	if config.Instrument {
		if err := redisotel.InstrumentTracing(client); err != nil {
			return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
		}
		if err := redisotel.InstrumentMetrics(client); err != nil {
			return nil, fmt.Errorf("failed to instrument redis metrics: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultPingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return &Cache{client: client}, nil
}

// NewCacheFromClient wraps an existing client
func NewCacheFromClient(client *goredis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string) (interface{}, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, fmt.Errorf("%w: %s", cacheerrors.ErrKeyNotFound, key)
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, nil
}

// Set stores the value; any non-positive expiration keeps the key forever
func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if expiration < 0 {
		expiration = 0
	}
	if err := c.client.Set(ctx, key, value, expiration).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying connection pool
func (c *Cache) Close() error {
	return c.client.Close()
}
