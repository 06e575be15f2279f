// Package airtable fetches base schemas from the Airtable metadata API.
package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hlop3z/airtsgen/internal/alerr"
	"github.com/hlop3z/airtsgen/internal/schema"
)

const (
	// DefaultEndpoint is the public Airtable API.
	DefaultEndpoint = "https://api.airtable.com"
	// DefaultTimeout bounds each page request.
	DefaultTimeout = 30 * time.Second
	// DefaultRequestsPerSecond stays within Airtable's per-base limit.
	DefaultRequestsPerSecond = 5

	userAgent    = "airtsgen"
	maxErrorBody = 64 << 10
	maxPages     = 1000
)

// Config holds connection settings for the metadata API.
type Config struct {
	APIKey         string
	EndpointURL    string // empty means DefaultEndpoint
	RequestTimeout time.Duration
	CustomHeaders  map[string]string
}

// Client is a schema.Provider backed by the Airtable metadata API.
type Client struct {
	cfg      Config
	endpoint *url.URL
	http     *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
}

var _ schema.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the retrying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit paces page requests. A non-positive rate disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// New validates cfg and returns a client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, alerr.New(alerr.ErrMissingConfig, "api key is required").
			WithHelp("set api_key in airtsgen.yaml, AIRTABLE_API_KEY, or --api-key")
	}
	if cfg.EndpointURL == "" {
		cfg.EndpointURL = DefaultEndpoint
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultTimeout
	}

	endpoint, err := url.Parse(strings.TrimRight(cfg.EndpointURL, "/"))
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		e := alerr.New(alerr.ErrInvalidConfig, "endpoint url must be absolute").
			With("endpoint_url", cfg.EndpointURL)
		if err != nil {
			e = alerr.Wrap(alerr.ErrInvalidConfig, err, "invalid endpoint url").
				With("endpoint_url", cfg.EndpointURL)
		}
		return nil, e
	}

	c := &Client{
		cfg:      cfg,
		endpoint: endpoint,
		limiter:  rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = NewHTTPClient(WithTransportLogger(c.logger.With("subsystem", "airtable")))
	}
	return c, nil
}

// FetchSchema returns every table of the base, following offset pagination.
func (c *Client) FetchSchema(ctx context.Context, baseID string) (schema.Base, error) {
	if baseID == "" {
		return nil, alerr.New(alerr.ErrMissingConfig, "base id is required").
			WithHelp("set base_id in airtsgen.yaml, AIRTABLE_BASE_ID, or --base-id")
	}

	var base schema.Base
	seen := make(map[string]bool)
	offset := ""

	for page := 1; ; page++ {
		if page > maxPages {
			return nil, alerr.New(alerr.ErrProviderResponse, "too many schema pages").
				WithBase(baseID)
		}

		p, err := c.fetchPage(ctx, baseID, offset)
		if err != nil {
			return nil, err
		}
		base = append(base, p.Tables...)

		c.logger.Debug("fetched schema page",
			"base", baseID, "page", page, "tables", len(p.Tables))

		if p.Offset == "" {
			break
		}
		if seen[p.Offset] {
			return nil, alerr.New(alerr.ErrProviderResponse, "pagination offset repeated").
				WithBase(baseID).
				With("offset", p.Offset)
		}
		seen[p.Offset] = true
		offset = p.Offset
	}

	if err := base.Validate(); err != nil {
		return nil, err
	}
	return base, nil
}

// tablesURL builds the tables listing URL for one page.
func (c *Client) tablesURL(baseID, offset string) string {
	u := *c.endpoint
	u.Path = strings.TrimRight(u.Path, "/") + "/v0/meta/bases/" + url.PathEscape(baseID) + "/tables"
	u.RawPath = ""
	if offset != "" {
		u.RawQuery = url.Values{"offset": {offset}}.Encode()
	}
	return u.String()
}

func (c *Client) fetchPage(ctx context.Context, baseID, offset string) (*schema.Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, alerr.Wrap(alerr.ErrProviderTransport, err, "request canceled").
			WithBase(baseID)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tablesURL(baseID, offset), nil)
	if err != nil {
		return nil, alerr.Wrap(alerr.EInternalError, err, "failed to build request")
	}
	for k, v := range c.cfg.CustomHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrProviderTransport, err, "schema request failed").
			WithBase(baseID).
			With("endpoint", c.endpoint.Host)
	}
	defer resp.Body.Close()

	c.logger.Debug("schema request",
		"base", baseID, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, baseID)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrProviderTransport, err, "failed to read schema response").
			WithBase(baseID)
	}

	p, err := schema.Decode(data)
	if err != nil {
		var e *alerr.Error
		if errors.As(err, &e) {
			e.WithBase(baseID)
		}
		return nil, err
	}
	return p, nil
}

// apiError is the error envelope of the Airtable API. The error member is
// either an object with type and message or a bare type string.
type apiError struct {
	Error json.RawMessage `json:"error"`
}

func decodeAPIError(body []byte) (typ, msg string) {
	var env apiError
	if json.Unmarshal(body, &env) != nil || len(env.Error) == 0 {
		return "", ""
	}
	if json.Unmarshal(env.Error, &typ) == nil {
		return typ, ""
	}
	var obj struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if json.Unmarshal(env.Error, &obj) == nil {
		return obj.Type, obj.Message
	}
	return "", ""
}

// statusError classifies a non-200 response.
func statusError(resp *http.Response, baseID string) *alerr.Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	typ, msg := decodeAPIError(body)

	var e *alerr.Error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		e = alerr.New(alerr.ErrProviderAuth, "airtable rejected the api key").
			WithHelp("the token needs the schema.bases:read scope and access to the base")
	case http.StatusNotFound:
		e = alerr.New(alerr.ErrProviderNotFound, "base not found").
			WithHelp("check the base id; it starts with \"app\"")
	case http.StatusTooManyRequests:
		e = alerr.New(alerr.ErrProviderRateLimit, "airtable rate limit exceeded")
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			e.With("retry_after", ra)
		}
	default:
		e = alerr.New(alerr.ErrProviderTransport, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	e.WithBase(baseID).With("status", resp.StatusCode)
	if typ != "" {
		e.With("error_type", typ)
	}
	if msg != "" {
		e.With("error_message", msg)
	}
	return e
}
