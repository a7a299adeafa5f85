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


// Package config loads the service configuration from YAML files, a .env file and
// CUPOS_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ritmofit/cupos/pkg/cache"
	"github.com/ritmofit/cupos/pkg/clients/classes"
	"github.com/ritmofit/cupos/pkg/events"
	"github.com/ritmofit/cupos/pkg/telemetry"
)

const (
	EnvPrefix         = "CUPOS"
	DefaultConfigDir  = "config"
	DefaultConfigName = "default"

	AuthModeAPIKey = "apikey"
	AuthModeBasic  = "basic"
)

var (
	appConfig     *AppConfig
	appConfigErr  error
	appConfigOnce sync.Once
)

type AppConfig struct {
	App       App              `mapstructure:"app"`
	Cache     cache.Config     `mapstructure:"cache"`
	Seats     SeatsConfig      `mapstructure:"seats"`
	APIServer APIServerConfig  `mapstructure:"apiServer"`
	Classes   classes.Config   `mapstructure:"classes"`
	Events    events.Config    `mapstructure:"events"`
	Telemetry telemetry.Config `mapstructure:"telemetry"`
	Jobs      JobsConfig       `mapstructure:"jobs"`
}

type App struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"logLevel"`
	LogFormat   string `mapstructure:"logFormat"`
}

type SeatsConfig struct {
	DefaultCapacity int  `mapstructure:"defaultCapacity"`
	EnforceCapacity bool `mapstructure:"enforceCapacity"`
	// SeedFile is applied by `serve` on startup when set
	SeedFile string `mapstructure:"seedFile"`
}

type APIServerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
	Auth            AuthConfig    `mapstructure:"auth"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type AuthConfig struct {
	Enabled    bool        `mapstructure:"enabled"`
	Mode       string      `mapstructure:"mode"`
	APIKeys    []string    `mapstructure:"apiKeys"`
	BasicUsers []BasicUser `mapstructure:"basicUsers"`
}

type BasicUser struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
	AllowedMethods []string `mapstructure:"allowedMethods"`
	AllowedHeaders []string `mapstructure:"allowedHeaders"`
}

type JobsConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	AuditInterval time.Duration `mapstructure:"auditInterval"`
}

// GetEnvironment returns APP_ENV, or "default" when unset
func GetEnvironment() string {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return DefaultConfigName
}

// GetConfig loads the configuration once per process from CONFIG_DIR (default ./config)
func GetConfig() (*AppConfig, error) {
	appConfigOnce.Do(func() {
		dir := os.Getenv("CONFIG_DIR")
		if dir == "" {
			dir = DefaultConfigDir
		}
		appConfig, appConfigErr = LoadConfig(dir, GetEnvironment())
	})
	return appConfig, appConfigErr
}

// LoadConfig reads default.yaml from dir, merges <environment>.yaml over it and applies
// environment overrides. Missing files are not an error; everything has a default.
func LoadConfig(dir, environment string) (*AppConfig, error) {
	if err := loadDotEnv(filepath.Join(dir, ".env"), ".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetConfigName(DefaultConfigName)
	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to read %s config: %w", DefaultConfigName, err)
	}

	if environment != "" && environment != DefaultConfigName {
		v.SetConfigName(environment)
		if err := v.MergeInConfig(); err != nil && !isNotFound(err) {
			return nil, fmt.Errorf("failed to read %s config: %w", environment, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = environment
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = cfg.App.Version
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults registers every known key so environment overrides apply even without a file
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "cupos")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "")
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.logFormat", "json")

	v.SetDefault("cache.driver", cache.DriverInMemory)
	v.SetDefault("cache.inmemory.defaultExpiration", 0)
	v.SetDefault("cache.inmemory.cleanupInterval", 600)
	v.SetDefault("cache.redis.host", "localhost")
	v.SetDefault("cache.redis.port", "6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.database", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.poolSize", 10)
	v.SetDefault("cache.redis.dialTimeout", 5)
	v.SetDefault("cache.redis.instrument", false)
	v.SetDefault("cache.file.path", "data/cupos.json")
	v.SetDefault("cache.mysql.user", "")
	v.SetDefault("cache.mysql.password", "")
	v.SetDefault("cache.mysql.host", "localhost")
	v.SetDefault("cache.mysql.port", "3306")
	v.SetDefault("cache.mysql.database", "")
	v.SetDefault("cache.mysql.table", "cupos_kv")

	v.SetDefault("seats.defaultCapacity", 20)
	v.SetDefault("seats.enforceCapacity", false)
	v.SetDefault("seats.seedFile", "")

	v.SetDefault("apiServer.enabled", true)
	v.SetDefault("apiServer.host", "0.0.0.0")
	v.SetDefault("apiServer.port", 8080)
	v.SetDefault("apiServer.shutdownTimeout", "10s")
	v.SetDefault("apiServer.auth.enabled", false)
	v.SetDefault("apiServer.auth.mode", AuthModeAPIKey)
	v.SetDefault("apiServer.auth.apiKeys", []string{})
	v.SetDefault("apiServer.cors.allowedOrigins", []string{})
	v.SetDefault("apiServer.cors.allowedMethods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("apiServer.cors.allowedHeaders", []string{"Origin", "Content-Type", "X-API-Key", "Authorization", "X-Request-ID"})

	v.SetDefault("classes.baseURL", "")
	v.SetDefault("classes.apiToken", "")
	v.SetDefault("classes.retryCount", 3)
	v.SetDefault("classes.connectionPool.timeout", "5s")
	v.SetDefault("classes.hystrix.maxConcurrentRequests", 100)
	v.SetDefault("classes.hystrix.errorPercentThreshold", 50)
	v.SetDefault("classes.hystrix.sleepWindow", "5s")

	v.SetDefault("events.enabled", false)
	v.SetDefault("events.url", events.DefaultURL)
	v.SetDefault("events.queue", events.DefaultQueue)
	v.SetDefault("events.publishTimeout", "5s")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.serviceName", "")
	v.SetDefault("telemetry.serviceVersion", "")
	v.SetDefault("telemetry.otlpEndpoint", "")
	v.SetDefault("telemetry.insecure", false)
	v.SetDefault("telemetry.exportInterval", "60s")

	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.auditInterval", "5m")
}

// Validate rejects settings the service cannot start with
func (c *AppConfig) Validate() error {
	var errs []error

	if c.Seats.DefaultCapacity < 0 {
		errs = append(errs, fmt.Errorf("seats.defaultCapacity must not be negative: %d", c.Seats.DefaultCapacity))
	}
	if c.APIServer.Enabled && (c.APIServer.Port <= 0 || c.APIServer.Port > 65535) {
		errs = append(errs, fmt.Errorf("apiServer.port out of range: %d", c.APIServer.Port))
	}
	if c.APIServer.Auth.Enabled {
		switch c.APIServer.Auth.Mode {
		case AuthModeAPIKey:
			if len(c.APIServer.Auth.APIKeys) == 0 {
				errs = append(errs, errors.New("apiServer.auth.apiKeys is empty while api key auth is enabled"))
			}
		case AuthModeBasic:
			if len(c.APIServer.Auth.BasicUsers) == 0 {
				errs = append(errs, errors.New("apiServer.auth.basicUsers is empty while basic auth is enabled"))
			}
		default:
			errs = append(errs, fmt.Errorf("apiServer.auth.mode must be %q or %q, got %q",
				AuthModeAPIKey, AuthModeBasic, c.APIServer.Auth.Mode))
		}
	}
	if c.Jobs.Enabled && c.Jobs.AuditInterval <= 0 {
		errs = append(errs, fmt.Errorf("jobs.auditInterval must be positive: %s", c.Jobs.AuditInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}

// loadDotEnv loads the first existing file of paths without overriding set variables
func loadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		return nil
	}
	return nil
}
