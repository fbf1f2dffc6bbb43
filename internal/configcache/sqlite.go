package configcache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"movs/internal/appconfig"
	"movs/internal/logging"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. A mismatching database must be
// cleared or deleted.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version differs from schemaVersion.
var ErrSchemaMismatch = errors.New("schema version mismatch")

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	operationTimeout        = 5 * time.Second
)

// SQLiteCache persists the snapshot as a single row in a SQLite database.
type SQLiteCache struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// OpenSQLite opens or creates the snapshot database at path.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteCache, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite cache path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &SQLiteCache{
		db:     db,
		path:   path,
		logger: logging.NewComponentLogger(logger, "configcache"),
		now:    time.Now,
	}
	if err := cache.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Load returns the stored configuration. Read or decode failures are logged
// and reported as a miss.
func (c *SQLiteCache) Load() (appconfig.Config, bool) {
	snapshot, ok, err := c.read()
	if err != nil {
		logging.WarnWithContext(c.logger, "failed to read config cache",
			"configcache_load_failed",
			logging.Error(err),
			logging.String("path", c.path),
			logging.String(logging.FieldErrorHint, "run 'movs cache clear' if the database is damaged"),
			logging.String(logging.FieldImpact, "offline fallback unavailable"))
		return appconfig.Config{}, false
	}
	if !ok {
		return appconfig.Config{}, false
	}
	return snapshot.Config, true
}

// Snapshot returns the stored configuration with its timestamp.
func (c *SQLiteCache) Snapshot() (Snapshot, bool) {
	snapshot, ok, err := c.read()
	if err != nil {
		c.logger.Debug("config cache snapshot unavailable", logging.Error(err))
		return Snapshot{}, false
	}
	return snapshot, ok
}

// Store upserts the snapshot row. Failures are logged.
func (c *SQLiteCache) Store(cfg appconfig.Config) {
	if err := c.write(cfg); err != nil {
		logging.WarnWithContext(c.logger, "failed to persist config cache",
			"configcache_store_failed",
			logging.Error(err),
			logging.String("path", c.path),
			logging.String(logging.FieldErrorHint, "check permissions and free space of the data directory"),
			logging.String(logging.FieldImpact, "the cached config may be stale on restart"))
		return
	}
	c.logger.Debug("cached config snapshot",
		logging.String("path", c.path),
		logging.Int("genre_count", len(cfg.Genres)))
}

// Clear deletes the snapshot row.
func (c *SQLiteCache) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	return retryOnBusy(ctx, func() error {
		_, err := c.db.ExecContext(ctx, "DELETE FROM config_snapshot")
		return err
	})
}

// Close closes the underlying database connection.
func (c *SQLiteCache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *SQLiteCache) read() (Snapshot, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	var payload, cachedAt string
	err := c.db.QueryRowContext(ctx,
		"SELECT payload, cached_at FROM config_snapshot WHERE id = 1",
	).Scan(&payload, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("query snapshot: %w", err)
	}

	var cfg appconfig.Config
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, cachedAt)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("parse cached_at: %w", err)
	}
	return Snapshot{Config: cfg, CachedAt: ts}, true, nil
}

func (c *SQLiteCache) write(cfg appconfig.Config) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	cachedAt := c.now().UTC().Format(time.RFC3339Nano)

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	return retryOnBusy(ctx, func() error {
		_, err := c.db.ExecContext(ctx,
			`INSERT INTO config_snapshot (id, payload, cached_at) VALUES (1, ?, ?)
			ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, cached_at = excluded.cached_at`,
			string(payload), cachedAt)
		return err
	})
}

func (c *SQLiteCache) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return c.createSchema(ctx)
	}

	var version int
	if err := c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, c.path)
	}
	return nil
}

func (c *SQLiteCache) createSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
