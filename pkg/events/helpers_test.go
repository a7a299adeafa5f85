package events

import (
	"github.com/ritmofit/cupos/pkg/cache"
	"github.com/ritmofit/cupos/pkg/cache/inmemory"
)

func newMemoryCache() (cache.Cache, error) {
	return inmemory.NewCache(&inmemory.Config{DefaultExpiration: 300, CleanupInterval: 600})
}
