package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"regexp"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"github.com/ritmofit/cupos/pkg/cache/cacheerrors"
)

const defaultTable = "cupos_kv"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// Config holds the connection parameters for the mysql driver
type Config struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Table    string `mapstructure:"table"`
}

// Cache stores entries in a two column key/value table
type Cache struct {
	db    *sql.DB
	table string
}

// DSN builds the driver connection string. parseTime keeps DATETIME columns as time.Time in UTC.
func (c *Config) DSN() string {
	cfg := driver.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	host, port := c.Host, c.Port
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "3306"
	}
	cfg.Addr = net.JoinHostPort(host, port)
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

func (c *Config) tableName() (string, error) {
	if c.Table == "" {
		return defaultTable, nil
	}
	if !tableNamePattern.MatchString(c.Table) {
		return "", fmt.Errorf("invalid mysql cache table name %q", c.Table)
	}
	return c.Table, nil
}

// NewCache opens the pool, pings the server and creates the table if missing
func NewCache(config *Config) (*Cache, error) {
	if config == nil {
		return nil, fmt.Errorf("mysql cache config is required")
	}
	if config.User == "" || config.Database == "" {
		return nil, fmt.Errorf("mysql cache requires user and database")
	}
	table, err := config.tableName()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("mysql", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to mysql: %w", err)
	}

	c := &Cache{db: db, table: table}
	if err := c.ensureTable(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Cache) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		cache_key VARCHAR(255) NOT NULL PRIMARY KEY,
		cache_value MEDIUMTEXT NOT NULL,
		expires_at DATETIME NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, c.table)
	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", c.table, err)
	}
	return nil
}

func (c *Cache) Get(ctx context.Context, key string) (interface{}, error) {
	var value string
	query := fmt.Sprintf(
		`SELECT cache_value FROM %s WHERE cache_key = ? AND (expires_at IS NULL OR expires_at > UTC_TIMESTAMP())`,
		c.table)
	err := c.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", cacheerrors.ErrKeyNotFound, key)
		}
		return nil, fmt.Errorf("mysql get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts the value; a non-positive expiration keeps it forever
func (c *Cache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	s, err := cacheerrors.ToString(value)
	if err != nil {
		return fmt.Errorf("mysql set %s: %w: %T", key, err, value)
	}

	var expiresAt sql.NullTime
	if expiration > 0 {
		expiresAt = sql.NullTime{Time: time.Now().UTC().Add(expiration), Valid: true}
	}

	query := fmt.Sprintf(
		`INSERT INTO %s (cache_key, cache_value, expires_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE cache_value = VALUES(cache_value), expires_at = VALUES(expires_at)`,
		c.table)
	if _, err := c.db.ExecContext(ctx, query, key, s, expiresAt); err != nil {
		return fmt.Errorf("mysql set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE cache_key = ?`, c.table)
	if _, err := c.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("mysql delete %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}
