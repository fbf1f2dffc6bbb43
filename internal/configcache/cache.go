package configcache

import (
	"fmt"
	"log/slog"
	"time"

	"movs/internal/appconfig"
	"movs/internal/config"
)

// Snapshot is the persisted form of the last resolved configuration.
type Snapshot struct {
	Config   appconfig.Config `json:"config"`
	CachedAt time.Time        `json:"cached_at"`
}

// Cache is a persisted, single-snapshot config store. Load and Store satisfy
// the loader's store contract; the remaining methods serve the CLI.
type Cache interface {
	Load() (appconfig.Config, bool)
	Store(cfg appconfig.Config)
	Snapshot() (Snapshot, bool)
	Clear() error
	Close() error
}

var (
	_ Cache = (*FileCache)(nil)
	_ Cache = (*SQLiteCache)(nil)
)

// Open returns the cache backend selected by cfg.Cache.Backend.
func Open(cfg *config.Config, logger *slog.Logger) (Cache, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendJSON, "":
		return NewFileCache(cfg.Cache.Path, logger), nil
	case config.CacheBackendSQLite:
		return OpenSQLite(cfg.Cache.Path, logger)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
