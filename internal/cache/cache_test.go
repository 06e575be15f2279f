package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/hlop3z/airtsgen/internal/alerr"
	"github.com/hlop3z/airtsgen/internal/schema"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func testBase(names ...string) schema.Base {
	var base schema.Base
	for i, n := range names {
		base = append(base, &schema.Table{
			ID:   fmt.Sprintf("tbl%d", i),
			Name: n,
			Fields: []*schema.Field{
				{ID: fmt.Sprintf("fld%d", i), Name: "Name", Type: "singleLineText"},
			},
		})
	}
	return base
}

func TestCacheOpenClose(t *testing.T) {
	tmpDir := t.TempDir()

	c, err := Open(tmpDir)
	if err != nil {
		t.Fatalf("failed to open cache: %v", err)
	}
	defer c.Close()

	cachePath := filepath.Join(tmpDir, CacheDir, CacheFile)
	if _, err := os.Stat(cachePath); os.IsNotExist(err) {
		t.Errorf("cache file was not created")
	}
	if c.Path() != cachePath {
		t.Errorf("Path() = %q, want %q", c.Path(), cachePath)
	}
	if !Exists(tmpDir) {
		t.Error("Exists() = false after Open")
	}

	version, err := c.GetCacheVersion()
	if err != nil || version != "1" {
		t.Errorf("GetCacheVersion() = %q, %v", version, err)
	}

	var nilCache *Cache
	if nilCache.Close() != nil || nilCache.Path() != "" {
		t.Error("nil cache should be inert")
	}
}

func TestSaveAndLatest(t *testing.T) {
	c := openTestCache(t)
	base := testBase("Projects", "Clients")

	fp, err := c.Save("appXXX", base)
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	want, _ := base.Fingerprint()
	if fp != want {
		t.Errorf("Save() fingerprint = %q, want %q", fp, want)
	}

	snap, err := c.Latest("appXXX")
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if snap.Fingerprint != fp || snap.Tables != 2 || snap.Fields != 2 {
		t.Errorf("snapshot = %+v", snap)
	}
	if got := snap.Base.TableNames(); len(got) != 2 || got[0] != "Projects" || got[1] != "Clients" {
		t.Errorf("table order = %v", got)
	}
	if snap.FetchedAt.IsZero() {
		t.Error("FetchedAt not set")
	}
}

func TestLatestPrefersNewest(t *testing.T) {
	c := openTestCache(t)

	if _, err := c.Save("appXXX", testBase("Old")); err != nil {
		t.Fatal(err)
	}
	newFP, err := c.Save("appXXX", testBase("New"))
	if err != nil {
		t.Fatal(err)
	}

	snap, err := c.Latest("appXXX")
	if err != nil {
		t.Fatal(err)
	}
	if snap.Fingerprint != newFP {
		t.Errorf("Latest() returned %s, want newest %s", snap.Fingerprint, newFP)
	}
}

func TestSaveUnchangedSchemaDeduplicates(t *testing.T) {
	c := openTestCache(t)
	for i := 0; i < 3; i++ {
		if _, err := c.Save("appXXX", testBase("Projects")); err != nil {
			t.Fatal(err)
		}
	}

	snaps, err := c.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 1 {
		t.Errorf("got %d snapshots, want 1", len(snaps))
	}
}

func TestSavePrunes(t *testing.T) {
	c := openTestCache(t)
	for i := 0; i < DefaultKeep+3; i++ {
		if _, err := c.Save("appXXX", testBase(fmt.Sprintf("T%d", i))); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := c.GetStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Snapshots != DefaultKeep || stats.Bases != 1 {
		t.Errorf("stats = %+v, want %d snapshots of 1 base", stats, DefaultKeep)
	}
}

func TestLatestMiss(t *testing.T) {
	c := openTestCache(t)
	_, err := c.Latest("appNONE")
	if !alerr.Is(err, alerr.ErrCacheMiss) {
		t.Errorf("err = %v, want %s", err, alerr.ErrCacheMiss)
	}
}

func TestLatestDetectsCorruption(t *testing.T) {
	c := openTestCache(t)
	if _, err := c.Save("appXXX", testBase("Projects")); err != nil {
		t.Fatal(err)
	}
	if _, err := c.db.Exec("UPDATE snapshots SET schema_json = ?", `{"tables":[]}`); err != nil {
		t.Fatal(err)
	}

	_, err := c.Latest("appXXX")
	if !alerr.Is(err, alerr.ErrCacheCorrupt) {
		t.Errorf("err = %v, want %s", err, alerr.ErrCacheCorrupt)
	}
}

func TestClear(t *testing.T) {
	c := openTestCache(t)
	c.Save("appA", testBase("One"))
	c.Save("appA", testBase("Two"))
	c.Save("appB", testBase("One"))

	n, err := c.Clear("appA")
	if err != nil || n != 2 {
		t.Fatalf("Clear(appA) = %d, %v", n, err)
	}
	if _, err := c.Latest("appB"); err != nil {
		t.Errorf("appB should survive: %v", err)
	}

	n, err = c.Clear("")
	if err != nil || n != 1 {
		t.Fatalf("Clear() = %d, %v", n, err)
	}
	if err := c.Vacuum(); err != nil {
		t.Errorf("Vacuum() error: %v", err)
	}
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	c, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	c.Close()

	if err := Remove(dir); err != nil {
		t.Fatal(err)
	}
	if Exists(dir) {
		t.Error("cache still exists after Remove")
	}
}

// -----------------------------------------------------------------------------
// Provider Tests
// -----------------------------------------------------------------------------

func TestProviderSavesAndServesOffline(t *testing.T) {
	c := openTestCache(t)
	calls := 0
	upstream := schema.ProviderFunc(func(ctx context.Context, baseID string) (schema.Base, error) {
		calls++
		return testBase("Projects"), nil
	})

	online := &Provider{Upstream: upstream, Cache: c}
	fetched, err := online.FetchSchema(context.Background(), "appXXX")
	if err != nil {
		t.Fatal(err)
	}

	offline := &Provider{Upstream: upstream, Cache: c, Offline: true}
	cached, err := offline.FetchSchema(context.Background(), "appXXX")
	if err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("upstream called %d times, want 1", calls)
	}
	a, _ := fetched.Fingerprint()
	b, _ := cached.Fingerprint()
	if a != b {
		t.Error("offline schema differs from the fetched one")
	}
}

func TestProviderPropagatesUpstreamErrors(t *testing.T) {
	c := openTestCache(t)
	boom := alerr.New(alerr.ErrProviderAuth, "denied")
	p := &Provider{
		Upstream: schema.ProviderFunc(func(ctx context.Context, baseID string) (schema.Base, error) {
			return nil, boom
		}),
		Cache: c,
	}

	_, err := p.FetchSchema(context.Background(), "appXXX")
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want upstream error", err)
	}
	if snaps, _ := c.List(); len(snaps) != 0 {
		t.Error("failed fetch must not be cached")
	}
}

func TestProviderOfflineMiss(t *testing.T) {
	p := &Provider{Cache: openTestCache(t), Offline: true}
	_, err := p.FetchSchema(context.Background(), "appXXX")
	if !alerr.Is(err, alerr.ErrCacheMiss) {
		t.Errorf("err = %v", err)
	}
}
