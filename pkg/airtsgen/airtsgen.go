// Package airtsgen provides the public API of the airtsgen code generator.
// It fetches the schema of an Airtable base and renders airtable-ts record
// interfaces and table bindings for every table.
//
// Example:
//
//	res, err := airtsgen.Generate(ctx,
//	    airtsgen.WithAPIKey(os.Getenv("AIRTABLE_API_KEY")),
//	    airtsgen.WithBaseID("appXXXXXXXXXXXXXX"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("src/airtable.ts", []byte(res.Text), 0o644)
package airtsgen

import (
	"context"
	"log/slog"
	"time"

	"github.com/hlop3z/airtsgen/internal/airtable"
	"github.com/hlop3z/airtsgen/internal/cache"
	"github.com/hlop3z/airtsgen/internal/codegen"
	"github.com/hlop3z/airtsgen/internal/schema"
)

// Schema types, re-exported for callers that supply their own Provider.
type (
	Base         = schema.Base
	Table        = schema.Table
	Field        = schema.Field
	FieldType    = schema.FieldType
	FieldOptions = schema.FieldOptions
	Choice       = schema.Choice
	Provider     = schema.Provider

	// ProviderFunc adapts a function to the Provider interface.
	ProviderFunc = schema.ProviderFunc
)

// Generation types.
type (
	Warning = codegen.Warning
	Layout  = codegen.Layout
	File    = codegen.File
)

const (
	LayoutSingle = codegen.LayoutSingle
	LayoutSplit  = codegen.LayoutSplit
)

// ParseLayout validates a layout name ("single" or "split").
func ParseLayout(s string) (Layout, error) {
	return codegen.ParseLayout(s)
}

// Client generates code for one base.
// Create it with New and release it with Close.
type Client struct {
	config   *Config
	provider Provider
	cache    *cache.Cache
	logger   *slog.Logger
}

// New creates a Client. The schema source is, in order of preference, the
// configured Provider, the schema file, the offline cache, or the Airtable API.
func New(opts ...Option) (*Client, error) {
	cfg := &Config{
		Concurrency:    codegen.DefaultConcurrency,
		RequestTimeout: airtable.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = codegen.DefaultConcurrency
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = airtable.DefaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{config: cfg, logger: logger}
	if err := c.initProvider(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) initProvider() error {
	cfg := c.config

	switch {
	case cfg.Provider != nil:
		c.provider = cfg.Provider
		return nil
	case cfg.SchemaFile != "":
		c.provider = schema.FileProvider{Path: cfg.SchemaFile}
		return nil
	}

	if cfg.BaseID == "" {
		return ErrMissingBaseID
	}
	if cfg.Offline && cfg.CacheDir == "" {
		return ErrOfflineWithoutCache
	}

	var upstream Provider
	if !cfg.Offline {
		if cfg.APIKey == "" {
			return ErrMissingAPIKey
		}
		client, err := airtable.New(airtable.Config{
			APIKey:         cfg.APIKey,
			EndpointURL:    cfg.EndpointURL,
			RequestTimeout: cfg.RequestTimeout,
			CustomHeaders:  cfg.CustomHeaders,
		}, airtable.WithLogger(c.logger))
		if err != nil {
			return err
		}
		upstream = client
	}

	if cfg.CacheDir == "" {
		c.provider = upstream
		return nil
	}

	store, err := cache.Open(cfg.CacheDir)
	if err != nil {
		return err
	}
	c.cache = store
	c.provider = &cache.Provider{
		Upstream: upstream,
		Cache:    store,
		Offline:  cfg.Offline,
		Logger:   c.logger,
	}
	return nil
}

// Close releases the cache, if one is open.
func (c *Client) Close() error {
	if c.cache == nil {
		return nil
	}
	err := c.cache.Close()
	c.cache = nil
	return err
}

// Config returns a copy of the effective configuration.
func (c *Client) Config() Config {
	return *c.config
}

// FetchSchema fetches the base schema and applies the table filter.
func (c *Client) FetchSchema(ctx context.Context) (Base, error) {
	start := time.Now()
	base, err := c.provider.FetchSchema(ctx, c.config.BaseID)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("schema fetched",
		"base", c.config.BaseID,
		"tables", len(base),
		"fields", base.FieldCount(),
		"duration", time.Since(start))
	return base.Filter(c.config.Tables)
}

// Generate fetches the schema once and renders every selected table. A base
// id is required even when the schema comes from a file or a custom provider,
// because it is written into every table binding.
func (c *Client) Generate(ctx context.Context) (*Result, error) {
	if c.config.BaseID == "" {
		return nil, ErrMissingBaseID
	}
	base, err := c.FetchSchema(ctx)
	if err != nil {
		return nil, err
	}
	return Render(ctx, c.config.BaseID, base, c.config.Concurrency)
}

// Generate is a one-shot helper: New, Generate, Close.
func Generate(ctx context.Context, opts ...Option) (*Result, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.Generate(ctx)
}

// Render generates code for an already loaded schema. It performs no I/O.
func Render(ctx context.Context, baseID string, base Base, concurrency int) (*Result, error) {
	if baseID == "" {
		return nil, ErrMissingBaseID
	}
	out, err := codegen.Generate(ctx, baseID, base, codegen.Options{Concurrency: concurrency})
	if err != nil {
		return nil, err
	}
	fp, err := base.Fingerprint()
	if err != nil {
		return nil, err
	}
	return &Result{
		BaseID:      baseID,
		Fingerprint: fp,
		Text:        out.Text,
		Warnings:    out.Warnings,
		Tables:      len(out.Tables),
		output:      out,
	}, nil
}
