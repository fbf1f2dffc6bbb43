package testsupport

import (
	"testing"

	"movs/internal/appconfig"
	"movs/internal/config"
	"movs/internal/configcache"
)

// MustOpenCache opens the configured cache backend for tests and registers cleanup.
func MustOpenCache(t testing.TB, cfg *config.Config) configcache.Cache {
	t.Helper()

	cache, err := configcache.Open(cfg, nil)
	if err != nil {
		t.Fatalf("configcache.Open: %v", err)
	}
	t.Cleanup(func() {
		cache.Close()
	})
	return cache
}

// SeedCache stores cfgValue in the configured cache backend.
func SeedCache(t testing.TB, cfg *config.Config, cfgValue appconfig.Config) {
	t.Helper()

	cache, err := configcache.Open(cfg, nil)
	if err != nil {
		t.Fatalf("configcache.Open: %v", err)
	}
	defer cache.Close()
	cache.Store(cfgValue)
}
