package cache

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hlop3z/airtsgen/internal/alerr"
	"github.com/hlop3z/airtsgen/internal/schema"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	// CacheDir is the directory name for the cache (gitignored).
	CacheDir = ".airtsgen"
	// CacheFile is the SQLite database file name.
	CacheFile = "cache.db"
	// DefaultKeep is how many snapshots are kept per base.
	DefaultKeep = 10
)

// Cache stores fetched base schemas in .airtsgen/cache.db (SQLite).
// It is optional and can always be rebuilt by fetching again.
type Cache struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Snapshot is one stored schema of a base.
type Snapshot struct {
	BaseID      string
	Fingerprint string
	FetchedAt   time.Time
	Tables      int
	Fields      int
	Base        schema.Base // nil in listings
}

// Open opens or creates the cache database under dir.
func Open(dir string) (*Cache, error) {
	cacheDir := filepath.Join(dir, CacheDir)
	cachePath := filepath.Join(cacheDir, CacheFile)

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to create cache directory").
			With("path", cacheDir)
	}

	db, err := sql.Open("sqlite", cachePath)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to open cache database").
			With("path", cachePath)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, alerr.Wrap(alerr.ErrCacheInit, err, "failed to connect to cache database").
			With("path", cachePath)
	}

	c := &Cache{db: db, path: cachePath}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close closes the cache database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the path to the cache database file.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

func (c *Cache) initSchema() error {
	ddl := `
		CREATE TABLE IF NOT EXISTS snapshots (
			base_id      TEXT NOT NULL,
			fingerprint  TEXT NOT NULL,
			schema_json  TEXT NOT NULL,
			table_count  INTEGER NOT NULL,
			field_count  INTEGER NOT NULL,
			fetched_at   INTEGER NOT NULL,
			PRIMARY KEY (base_id, fingerprint)
		);

		CREATE INDEX IF NOT EXISTS idx_snapshots_fetched ON snapshots (base_id, fetched_at);

		CREATE TABLE IF NOT EXISTS cache_meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		INSERT OR REPLACE INTO cache_meta (key, value) VALUES ('version', '1');
	`

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec(ddl); err != nil {
		return alerr.Wrap(alerr.ErrCacheInit, err, "failed to initialize cache schema")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Snapshot Operations
// -----------------------------------------------------------------------------

// Save stores base as the latest snapshot of baseID and returns its
// fingerprint. Saving an unchanged schema only refreshes its timestamp.
// Snapshots beyond DefaultKeep are pruned, oldest first.
func (c *Cache) Save(baseID string, base schema.Base) (string, error) {
	fp, err := base.Fingerprint()
	if err != nil {
		return "", alerr.Wrap(alerr.ErrCacheWrite, err, "failed to fingerprint schema").
			WithBase(baseID)
	}
	data, err := base.Encode()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.Exec(
		`INSERT INTO snapshots (base_id, fingerprint, schema_json, table_count, field_count, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (base_id, fingerprint) DO UPDATE SET fetched_at = excluded.fetched_at`,
		baseID, fp, string(data), len(base), base.FieldCount(), time.Now().UTC().UnixNano(),
	)
	if err != nil {
		return "", alerr.Wrap(alerr.ErrCacheWrite, err, "failed to write schema snapshot").
			WithBase(baseID)
	}

	if err := c.prune(baseID, DefaultKeep); err != nil {
		return "", err
	}
	return fp, nil
}

// prune keeps the newest keep snapshots of baseID. Caller holds the lock.
func (c *Cache) prune(baseID string, keep int) error {
	_, err := c.db.Exec(
		`DELETE FROM snapshots WHERE base_id = ? AND fingerprint NOT IN (
			SELECT fingerprint FROM snapshots WHERE base_id = ? ORDER BY fetched_at DESC, rowid DESC LIMIT ?
		)`,
		baseID, baseID, keep,
	)
	if err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to prune snapshots").
			WithBase(baseID)
	}
	return nil
}

// Latest returns the most recently fetched snapshot of baseID.
// A missing snapshot is an ErrCacheMiss error.
func (c *Cache) Latest(baseID string) (*Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var (
		snap      = Snapshot{BaseID: baseID}
		raw       string
		fetchedAt int64
	)
	err := c.db.QueryRow(
		`SELECT fingerprint, schema_json, table_count, field_count, fetched_at
		 FROM snapshots WHERE base_id = ? ORDER BY fetched_at DESC, rowid DESC LIMIT 1`,
		baseID,
	).Scan(&snap.Fingerprint, &raw, &snap.Tables, &snap.Fields, &fetchedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, alerr.New(alerr.ErrCacheMiss, "no cached schema for base").
			WithBase(baseID).
			WithHelp("run once without --offline to populate the cache")
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to read schema snapshot").
			WithBase(baseID)
	}
	snap.FetchedAt = time.Unix(0, fetchedAt).UTC()

	page, err := schema.Decode([]byte(raw))
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheCorrupt, err, "cached schema is unreadable").
			WithBase(baseID).
			WithHelp("run `airtsgen cache clear`")
	}
	snap.Base = page.Tables

	if fp, err := snap.Base.Fingerprint(); err != nil || fp != snap.Fingerprint {
		return nil, alerr.New(alerr.ErrCacheCorrupt, "cached schema does not match its fingerprint").
			WithBase(baseID).
			With("fingerprint", snap.Fingerprint).
			WithHelp("run `airtsgen cache clear`")
	}
	return &snap, nil
}

// List returns all snapshots without their schemas, newest first per base.
func (c *Cache) List() ([]Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows, err := c.db.Query(
		`SELECT base_id, fingerprint, table_count, field_count, fetched_at
		 FROM snapshots ORDER BY base_id, fetched_at DESC`,
	)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to list snapshots")
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var s Snapshot
		var fetchedAt int64
		if err := rows.Scan(&s.BaseID, &s.Fingerprint, &s.Tables, &s.Fields, &fetchedAt); err != nil {
			return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to scan snapshot")
		}
		s.FetchedAt = time.Unix(0, fetchedAt).UTC()
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// -----------------------------------------------------------------------------
// Cache Management Operations
// -----------------------------------------------------------------------------

// Clear removes every snapshot, or only those of baseID when it is not empty.
// It returns the number of snapshots removed.
func (c *Cache) Clear(baseID string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var (
		res sql.Result
		err error
	)
	if baseID == "" {
		res, err = c.db.Exec("DELETE FROM snapshots")
	} else {
		res, err = c.db.Exec("DELETE FROM snapshots WHERE base_id = ?", baseID)
	}
	if err != nil {
		return 0, alerr.Wrap(alerr.ErrCacheWrite, err, "failed to clear cache")
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// GetCacheVersion returns the cache schema version.
func (c *Cache) GetCacheVersion() (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var version string
	err := c.db.QueryRow("SELECT value FROM cache_meta WHERE key = 'version'").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", alerr.Wrap(alerr.ErrCacheRead, err, "failed to read cache version")
	}
	return version, nil
}

// Stats returns cache statistics.
type Stats struct {
	Snapshots    int
	Bases        int
	DatabaseSize int64
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &Stats{}
	if err := c.db.QueryRow("SELECT COUNT(*), COUNT(DISTINCT base_id) FROM snapshots").
		Scan(&stats.Snapshots, &stats.Bases); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to count snapshots")
	}
	if fi, err := os.Stat(c.path); err == nil {
		stats.DatabaseSize = fi.Size()
	}
	return stats, nil
}

// Vacuum compacts the database file.
func (c *Cache) Vacuum() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := c.db.Exec("VACUUM"); err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to vacuum cache database")
	}
	return nil
}

// -----------------------------------------------------------------------------
// Helper Functions
// -----------------------------------------------------------------------------

// Exists checks if a cache database exists under dir.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, CacheDir, CacheFile))
	return err == nil
}

// Remove deletes the entire cache directory.
func Remove(dir string) error {
	cacheDir := filepath.Join(dir, CacheDir)
	if err := os.RemoveAll(cacheDir); err != nil {
		return alerr.Wrap(alerr.ErrCacheWrite, err, "failed to remove cache directory").
			With("path", cacheDir)
	}
	return nil
}
