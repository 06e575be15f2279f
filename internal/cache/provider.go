// Package cache keeps local snapshots of fetched base schemas in SQLite, so a
// base can be regenerated offline exactly as it was last fetched.
//
// Snapshots are keyed by base id and schema fingerprint. Identical schemas
// share one snapshot, so a cached run produces the same output as the fetch
// that filled it.
package cache

import (
	"context"
	"log/slog"

	"github.com/hlop3z/airtsgen/internal/schema"
)

// Provider wraps an upstream schema.Provider with snapshot persistence.
//
// Online, every successful fetch is saved; a failing save is logged and the
// fetched schema is still returned. Offline, the upstream is never called and
// the latest snapshot of the base is served.
type Provider struct {
	Upstream schema.Provider
	Cache    *Cache
	Offline  bool
	Logger   *slog.Logger
}

var _ schema.Provider = (*Provider)(nil)

// FetchSchema implements schema.Provider.
func (p *Provider) FetchSchema(ctx context.Context, baseID string) (schema.Base, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if p.Offline {
		snap, err := p.Cache.Latest(baseID)
		if err != nil {
			return nil, err
		}
		logger.Debug("serving cached schema",
			"base", baseID,
			"fingerprint", snap.Fingerprint,
			"fetched_at", snap.FetchedAt)
		return snap.Base, nil
	}

	base, err := p.Upstream.FetchSchema(ctx, baseID)
	if err != nil {
		return nil, err
	}

	if fp, err := p.Cache.Save(baseID, base); err != nil {
		logger.Warn("failed to cache schema", "base", baseID, "error", err)
	} else {
		logger.Debug("cached schema", "base", baseID, "fingerprint", fp)
	}
	return base, nil
}
