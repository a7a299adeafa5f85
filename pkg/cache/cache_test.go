package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritmofit/cupos/pkg/cache/file"
	"github.com/ritmofit/cupos/pkg/cache/inmemory"
	"github.com/ritmofit/cupos/pkg/cache/redis"
)

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{name: "nil config", config: nil, wantErr: true},
		{name: "default driver is inmemory", config: &Config{}},
		{
			name:   "inmemory",
			config: &Config{Driver: DriverInMemory, InMemory: inmemory.Config{DefaultExpiration: 300, CleanupInterval: 600}},
		},
		{
			name:   "redis",
			config: &Config{Driver: DriverRedis, Redis: redis.Config{Host: mr.Host(), Port: mr.Port()}},
		},
		{
			name:   "file",
			config: &Config{Driver: DriverFile, File: file.Config{Path: filepath.Join(t.TempDir(), "cupos.json")}},
		},
		{name: "file without path", config: &Config{Driver: DriverFile}, wantErr: true},
		{name: "mysql without credentials", config: &Config{Driver: DriverMySQL}, wantErr: true},
		{name: "unknown driver", config: &Config{Driver: "memcached"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, c)

			ctx := context.Background()
			require.NoError(t, c.Set(ctx, "probe", "ok", NoExpiration))
			val, err := c.Get(ctx, "probe")
			require.NoError(t, err)
			assert.Equal(t, "ok", val)
		})
	}
}
