package configcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"movs/internal/appconfig"
)

func sampleConfig() appconfig.Config {
	return appconfig.Config{
		ImageBaseURL: "https://image.tmdb.org/t/p/",
		Genres: []appconfig.Genre{
			{ID: 28, Name: "Action"},
			{ID: 35, Name: "Comedy"},
		},
	}
}

func TestFileCacheStoreAndLoad(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "config_cache.json")
	cache := NewFileCache(cachePath, nil)

	if _, ok := cache.Load(); ok {
		t.Fatal("new cache should be empty")
	}

	want := sampleConfig()
	cache.Store(want)

	got, ok := cache.Load()
	if !ok {
		t.Fatal("Load failed after Store")
	}
	if !got.Equal(want) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestFileCachePersistence(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "nested", "config_cache.json")
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cache1 := NewFileCache(cachePath, nil)
	cache1.now = func() time.Time { return fixed }
	cache1.Store(sampleConfig())

	if _, err := os.Stat(cachePath + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file should not remain after store, stat err=%v", err)
	}

	cache2 := NewFileCache(cachePath, nil)
	snapshot, ok := cache2.Snapshot()
	if !ok {
		t.Fatal("snapshot should persist across cache instances")
	}
	if !snapshot.Config.Equal(sampleConfig()) {
		t.Errorf("persisted config = %+v", snapshot.Config)
	}
	if !snapshot.CachedAt.Equal(fixed) {
		t.Errorf("CachedAt = %v, want %v", snapshot.CachedAt, fixed)
	}
}

func TestFileCacheStoreOverwrites(t *testing.T) {
	cache := NewFileCache(filepath.Join(t.TempDir(), "config_cache.json"), nil)
	cache.Store(sampleConfig())

	next := appconfig.Config{ImageBaseURL: "https://cdn.example/", Genres: []appconfig.Genre{{ID: 18, Name: "Drama"}}}
	cache.Store(next)

	got, _ := cache.Load()
	if !got.Equal(next) {
		t.Errorf("Load = %+v, want %+v", got, next)
	}
}

func TestFileCacheLoadReturnsCopy(t *testing.T) {
	cache := NewFileCache("", nil)
	cache.Store(sampleConfig())

	got, _ := cache.Load()
	got.Genres[0].Name = "Changed"

	again, _ := cache.Load()
	if again.Genres[0].Name != "Action" {
		t.Errorf("cache contents mutated through Load result: %q", again.Genres[0].Name)
	}
}

func TestFileCacheCorruptFile(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "config_cache.json")
	if err := os.WriteFile(cachePath, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	cache := NewFileCache(cachePath, nil)
	if _, ok := cache.Load(); ok {
		t.Fatal("corrupt cache file should be treated as empty")
	}

	cache.Store(sampleConfig())
	reopened := NewFileCache(cachePath, nil)
	if _, ok := reopened.Load(); !ok {
		t.Fatal("store should replace a corrupt file")
	}
}

func TestFileCacheStoreFailureKeepsMemory(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	// The parent "directory" is a regular file, so persistence must fail.
	cache := NewFileCache(filepath.Join(blocker, "config_cache.json"), nil)
	cache.Store(sampleConfig())

	if _, ok := cache.Load(); !ok {
		t.Fatal("in-memory snapshot should survive a persistence failure")
	}
}

func TestFileCacheClear(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "config_cache.json")
	cache := NewFileCache(cachePath, nil)
	cache.Store(sampleConfig())

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := cache.Load(); ok {
		t.Error("Load should miss after Clear")
	}
	if _, err := os.Stat(cachePath); !os.IsNotExist(err) {
		t.Errorf("cache file should be removed, stat err=%v", err)
	}
	if err := cache.Clear(); err != nil {
		t.Errorf("second Clear should not error: %v", err)
	}
}

func TestFileCacheEmptyPath(t *testing.T) {
	cache := NewFileCache("", nil)
	cache.Store(sampleConfig())

	if _, ok := cache.Load(); !ok {
		t.Error("memory-only cache should still serve the stored config")
	}
	if err := cache.Clear(); err != nil {
		t.Errorf("Clear with empty path should not error: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("Close should not error: %v", err)
	}
}
