package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hlop3z/airtsgen/internal/alerr"
	"github.com/hlop3z/airtsgen/pkg/airtsgen"
)

const (
	// DefaultConfigFile is read when --config is not given. It may be absent.
	DefaultConfigFile = "airtsgen.yaml"

	// DefaultEnvFile holds KEY=value pairs consulted after the process env.
	DefaultEnvFile = ".env"

	// DefaultOutput prints generated code to stdout.
	DefaultOutput = "-"
)

// Environment variables.
const (
	EnvAPIKey      = "AIRTABLE_API_KEY"
	EnvBaseID      = "AIRTABLE_BASE_ID"
	EnvEndpointURL = "AIRTABLE_ENDPOINT_URL"
)

// Config represents the airtsgen.yaml configuration file.
type Config struct {
	APIKey         string         `yaml:"api_key"`
	BaseID         string         `yaml:"base_id"`
	EndpointURL    string         `yaml:"endpoint_url"`
	RequestTimeout int            `yaml:"request_timeout"` // milliseconds
	CustomHeaders  map[string]any `yaml:"custom_headers"`
	Tables         []string       `yaml:"tables"`
	Output         string         `yaml:"output"`
	Layout         string         `yaml:"layout"`
	Cache          *bool          `yaml:"cache"`
	CacheDir       string         `yaml:"cache_dir"`
	Concurrency    int            `yaml:"concurrency"`

	// Resolved values.
	timeout time.Duration
	headers map[string]string
}

// CacheEnabled reports whether schema snapshots are kept. Defaults to true.
func (c *Config) CacheEnabled() bool {
	return c.Cache == nil || *c.Cache
}

// Headers returns the resolved custom headers.
func (c *Config) Headers() map[string]string {
	return c.headers
}

// Timeout returns the resolved per-request timeout, or 0 for the default.
func (c *Config) Timeout() time.Duration {
	return c.timeout
}

// flagValues are the persistent flags that feed configuration.
type flagValues struct {
	configFile  string
	configSet   bool // --config was given explicitly
	envFile     string
	apiKey      string
	baseID      string
	endpointURL string
	timeout     string
	headers     []string
}

// rootFlags collects the persistent flag values of cmd.
func rootFlags(cmd *cobra.Command) flagValues {
	return flagValues{
		configFile:  configFile,
		configSet:   cmd.Flags().Changed("config"),
		envFile:     DefaultEnvFile,
		apiKey:      apiKey,
		baseID:      baseID,
		endpointURL: endpointURL,
		timeout:     timeout,
		headers:     headers,
	}
}

// loadConfig loads configuration from file, env vars, and CLI flags.
// Precedence: CLI flags > env vars > .env file > config file > defaults
func loadConfig(fv flagValues) (*Config, error) {
	cfg := &Config{CacheDir: "."}

	getenv, err := envLookup(fv.envFile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fv.configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, alerr.Wrap(alerr.ErrInvalidConfig, err, "failed to parse config file").
				With("path", fv.configFile)
		}
		cfg.expand(getenv)
	case errors.Is(err, fs.ErrNotExist) && !fv.configSet:
		// The default config file is optional.
	default:
		return nil, alerr.Wrap(alerr.ErrInvalidConfig, err, "failed to read config file").
			With("path", fv.configFile)
	}

	hdrs, err := scalarHeaders(cfg.CustomHeaders)
	if err != nil {
		return nil, err
	}
	for k, v := range hdrs {
		hdrs[k] = expandVars(v, getenv)
	}
	cfg.headers = hdrs
	if cfg.RequestTimeout < 0 {
		return nil, alerr.New(alerr.ErrInvalidConfig, "request_timeout must not be negative").
			With("request_timeout", cfg.RequestTimeout)
	}
	cfg.timeout = time.Duration(cfg.RequestTimeout) * time.Millisecond

	// Override with env vars
	if v := getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := getenv(EnvBaseID); v != "" {
		cfg.BaseID = v
	}
	if v := getenv(EnvEndpointURL); v != "" {
		cfg.EndpointURL = v
	}

	// Override with CLI flags (highest priority)
	if fv.apiKey != "" {
		cfg.APIKey = fv.apiKey
	}
	if fv.baseID != "" {
		cfg.BaseID = fv.baseID
	}
	if fv.endpointURL != "" {
		cfg.EndpointURL = fv.endpointURL
	}
	if fv.timeout != "" {
		d, err := time.ParseDuration(fv.timeout)
		if err != nil || d < 0 {
			return nil, alerr.New(alerr.ErrInvalidConfig, "invalid --timeout").
				With("timeout", fv.timeout).
				WithHelp("use a duration such as 30s or 1m")
		}
		cfg.timeout = d
	}
	for _, h := range fv.headers {
		key, value, ok := strings.Cut(h, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, alerr.New(alerr.ErrInvalidHeader, "invalid --header").
				With("header", h).
				WithHelp("use key=value, e.g. --header X-Trace=abc")
		}
		cfg.headers[key] = value
	}

	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	return cfg, nil
}

// envVar matches a ${NAME} reference. A bare $ is literal.
var envVar = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandVars replaces ${NAME} references in s using getenv.
func expandVars(s string, getenv func(string) string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return envVar.ReplaceAllStringFunc(s, func(m string) string {
		return getenv(envVar.FindStringSubmatch(m)[1])
	})
}

// expand resolves ${NAME} references in the string settings read from the
// config file. Header values are expanded once they are stringified.
func (c *Config) expand(getenv func(string) string) {
	for _, p := range []*string{&c.APIKey, &c.BaseID, &c.EndpointURL, &c.Output, &c.Layout, &c.CacheDir} {
		*p = expandVars(*p, getenv)
	}
	for i, t := range c.Tables {
		c.Tables[i] = expandVars(t, getenv)
	}
}

// envLookup returns a getenv that consults the process environment first and
// then the env file, if it exists.
func envLookup(path string) (func(string) string, error) {
	dotenv := map[string]string{}
	if path != "" {
		m, err := godotenv.Read(path)
		switch {
		case err == nil:
			dotenv = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, alerr.Wrap(alerr.ErrInvalidConfig, err, "failed to read env file").
				With("path", path)
		}
	}
	return func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return dotenv[key]
	}, nil
}

// scalarHeaders stringifies header values. Strings, numbers and booleans are
// accepted; anything else is an error.
func scalarHeaders(raw map[string]any) (map[string]string, error) {
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		switch x := v.(type) {
		case string:
			s = x
		case int:
			s = strconv.Itoa(x)
		case int64:
			s = strconv.FormatInt(x, 10)
		case uint64:
			s = strconv.FormatUint(x, 10)
		case float64:
			s = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(x)
		default:
			return nil, alerr.New(alerr.ErrInvalidHeader, "custom header value must be a string, number or boolean").
				With("header", k).
				With("value", fmt.Sprintf("%v", v))
		}
		out[k] = s
	}
	return out, nil
}

// clientOptions converts the configuration into generator options.
func clientOptions(cfg *Config) []airtsgen.Option {
	opts := []airtsgen.Option{
		airtsgen.WithAPIKey(cfg.APIKey),
		airtsgen.WithBaseID(cfg.BaseID),
		airtsgen.WithEndpointURL(cfg.EndpointURL),
		airtsgen.WithRequestTimeout(cfg.timeout),
		airtsgen.WithConcurrency(cfg.Concurrency),
		airtsgen.WithLogger(slog.Default()),
	}
	if len(cfg.Tables) > 0 {
		opts = append(opts, airtsgen.WithTables(cfg.Tables...))
	}
	if cfg.CacheEnabled() {
		opts = append(opts, airtsgen.WithCache(cfg.CacheDir))
	}

	keys := make([]string, 0, len(cfg.headers))
	for k := range cfg.headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		opts = append(opts, airtsgen.WithHeader(k, cfg.headers[k]))
	}
	return opts
}

// newClient creates a generator client from the command's configuration plus
// any command-specific options.
func newClient(cmd *cobra.Command, extra ...airtsgen.Option) (*airtsgen.Client, *Config, error) {
	cfg, err := loadConfig(rootFlags(cmd))
	if err != nil {
		return nil, nil, err
	}
	client, err := airtsgen.New(append(clientOptions(cfg), extra...)...)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}
