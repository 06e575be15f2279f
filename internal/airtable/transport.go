package airtable

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
)

// LeveledSlog adapts an slog.Logger to retryablehttp's leveled logger.
type LeveledSlog struct {
	inner *slog.Logger
}

// Error is logged at WARN, since the request is usually retried.
func (l LeveledSlog) Error(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l LeveledSlog) Info(msg string, keysAndValues ...any) {
	l.inner.Debug(msg, keysAndValues...)
}

func (l LeveledSlog) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug(msg, keysAndValues...)
}

// TransportOption tunes the retrying HTTP client.
type TransportOption func(*retryablehttp.Client)

// WithMaxRetries sets the maximum number of retries per request.
func WithMaxRetries(n int) TransportOption {
	return func(c *retryablehttp.Client) {
		c.RetryMax = n
	}
}

// WithRetryWait sets the backoff bounds between retries.
func WithRetryWait(min, max time.Duration) TransportOption {
	return func(c *retryablehttp.Client) {
		c.RetryWaitMin = min
		c.RetryWaitMax = max
	}
}

// WithTransportLogger routes retry logging to logger.
func WithTransportLogger(logger *slog.Logger) TransportOption {
	return func(c *retryablehttp.Client) {
		c.Logger = retryablehttp.LeveledLogger(LeveledSlog{inner: logger})
	}
}

// NewHTTPClient returns a standard http.Client backed by retryablehttp over a
// pooled cleanhttp transport. Connection errors and 5xx responses (except 501)
// are retried; 429 is returned to the caller so it can report the rate limit.
func NewHTTPClient(opts ...TransportOption) *http.Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient.Transport = cleanhttp.DefaultPooledTransport()
	rc.RetryMax = 3
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = retryablehttp.LeveledLogger(LeveledSlog{inner: slog.Default().With("subsystem", "airtable")})
	rc.CheckRetry = RetryPolicy

	for _, opt := range opts {
		opt(rc)
	}
	return rc.StandardClient()
}

// RetryPolicy is retryablehttp.DefaultRetryPolicy without retries on
// 429 Too Many Requests.
func RetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}
