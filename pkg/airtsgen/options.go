package airtsgen

import (
	"log/slog"
	"time"
)

// Config holds all configuration options for the Client.
type Config struct {
	// APIKey is the Airtable personal access token.
	// Required unless a schema file, a custom provider or offline mode is used.
	APIKey string

	// BaseID is the id of the base to generate (e.g. appXXXXXXXXXXXXXX).
	BaseID string

	// EndpointURL overrides the Airtable API root.
	// Default: https://api.airtable.com
	EndpointURL string

	// RequestTimeout bounds each metadata API request.
	// Default: 30s
	RequestTimeout time.Duration

	// CustomHeaders are sent with every metadata API request.
	CustomHeaders map[string]string

	// Tables restricts generation to the tables with these names or ids.
	// Empty means every table.
	Tables []string

	// Concurrency bounds how many tables are rendered at once.
	// Default: 4
	Concurrency int

	// SchemaFile reads the schema from a saved JSON file instead of the API.
	SchemaFile string

	// CacheDir enables the snapshot cache in CacheDir/.airtsgen/cache.db.
	CacheDir string

	// Offline serves the latest cached snapshot without calling the API.
	// Requires CacheDir.
	Offline bool

	// Provider replaces the schema source entirely.
	Provider Provider

	// Logger receives debug and warning logs. Default: slog.Default().
	Logger *slog.Logger
}

// Option is a functional option for configuring the Client.
type Option func(*Config)

// WithAPIKey sets the Airtable personal access token.
func WithAPIKey(key string) Option {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithBaseID sets the base to generate.
func WithBaseID(id string) Option {
	return func(c *Config) {
		c.BaseID = id
	}
}

// WithEndpointURL overrides the API root, e.g. for a proxy.
func WithEndpointURL(url string) Option {
	return func(c *Config) {
		c.EndpointURL = url
	}
}

// WithRequestTimeout sets the per-request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

// WithHeader adds a custom request header.
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.CustomHeaders == nil {
			c.CustomHeaders = make(map[string]string)
		}
		c.CustomHeaders[key] = value
	}
}

// WithTables restricts generation to the named tables (by name or id).
func WithTables(tables ...string) Option {
	return func(c *Config) {
		c.Tables = append(c.Tables, tables...)
	}
}

// WithConcurrency bounds parallel table rendering.
func WithConcurrency(n int) Option {
	return func(c *Config) {
		c.Concurrency = n
	}
}

// WithSchemaFile reads the schema from a file written by `airtsgen schema --json`.
func WithSchemaFile(path string) Option {
	return func(c *Config) {
		c.SchemaFile = path
	}
}

// WithCache enables the snapshot cache under dir.
func WithCache(dir string) Option {
	return func(c *Config) {
		c.CacheDir = dir
	}
}

// WithOffline serves the latest cached schema instead of calling the API.
func WithOffline() Option {
	return func(c *Config) {
		c.Offline = true
	}
}

// WithProvider replaces the schema source.
func WithProvider(p Provider) Option {
	return func(c *Config) {
		c.Provider = p
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithConfig copies every field of cfg. Later options still apply on top.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}
