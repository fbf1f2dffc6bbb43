package configcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"movs/internal/appconfig"
	"movs/internal/logging"
)

// FileCache keeps the snapshot in memory and mirrors it to a JSON file.
type FileCache struct {
	path     string
	logger   *slog.Logger
	now      func() time.Time
	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewFileCache creates a file-backed cache, reading any existing snapshot from
// path. An empty path keeps the cache in memory only. A missing or corrupt file
// starts the cache empty.
func NewFileCache(path string, logger *slog.Logger) *FileCache {
	logger = logging.NewComponentLogger(logger, "configcache")

	c := &FileCache{
		path:   path,
		logger: logger,
		now:    time.Now,
	}

	if path == "" {
		return c
	}

	if err := c.read(); err != nil {
		logging.WarnWithContext(logger, "failed to load config cache",
			"configcache_load_failed",
			logging.Error(err),
			logging.String("path", path),
			logging.String(logging.FieldErrorHint, "the file will be rewritten after the next successful fetch"),
			logging.String(logging.FieldImpact, "offline fallback unavailable until a fetch succeeds"))
	}

	return c
}

// Load returns a copy of the cached configuration, if any.
func (c *FileCache) Load() (appconfig.Config, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return appconfig.Config{}, false
	}
	return c.snapshot.Config.Clone(), true
}

// Snapshot returns the cached configuration with its timestamp.
func (c *FileCache) Snapshot() (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return Snapshot{}, false
	}
	return Snapshot{Config: c.snapshot.Config.Clone(), CachedAt: c.snapshot.CachedAt}, true
}

// Store replaces the snapshot and persists it. Persistence failures are logged;
// the in-memory snapshot is replaced regardless.
func (c *FileCache) Store(cfg appconfig.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = &Snapshot{Config: cfg.Clone(), CachedAt: c.now().UTC()}
	if c.path == "" {
		return
	}

	if err := c.write(); err != nil {
		logging.WarnWithContext(c.logger, "failed to persist config cache",
			"configcache_store_failed",
			logging.Error(err),
			logging.String("path", c.path),
			logging.String(logging.FieldErrorHint, "check permissions and free space of the data directory"),
			logging.String(logging.FieldImpact, "the cached config will be lost on restart"))
		return
	}

	c.logger.Debug("cached config snapshot",
		logging.String("path", c.path),
		logging.Int("genre_count", len(cfg.Genres)))
}

// Clear drops the snapshot and removes the file.
func (c *FileCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = nil
	if c.path == "" {
		return nil
	}
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove cache file: %w", err)
	}
	c.logger.Debug("cleared config cache", logging.String("path", c.path))
	return nil
}

// Close is a no-op; every Store is already flushed.
func (c *FileCache) Close() error { return nil }

func (c *FileCache) read() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}
	if snapshot.Config.IsZero() {
		return nil
	}
	c.snapshot = &snapshot

	c.logger.Debug("loaded config cache",
		logging.String("path", c.path),
		logging.Int("genre_count", len(snapshot.Config.Genres)))
	return nil
}

// write persists the snapshot atomically via a temp file and rename.
func (c *FileCache) write() error {
	data, err := json.MarshalIndent(c.snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
