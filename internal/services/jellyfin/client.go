package jellyfin

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

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"subsweep/internal/config"
	"subsweep/internal/logging"
	"subsweep/internal/services"
)

// HTTPDoer describes the HTTP client used by the Jellyfin client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a read-only Jellyfin API client.
type Client struct {
	baseURL    string
	apiKey     string
	http       HTTPDoer
	limiter    *rate.Limiter
	attempts   uint
	retryDelay time.Duration
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP transport.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero disables throttling.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		c.limiter = newLimiter(perSecond)
	}
}

// WithRetry sets the total attempts per request and the initial backoff.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		if attempts < 1 {
			attempts = 1
		}
		c.attempts = uint(attempts)
		c.retryDelay = delay
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "jellyfin")
	}
}

// NewClient constructs a client for the server at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	apiKey = strings.TrimSpace(apiKey)
	if baseURL == "" || apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "jellyfin", "new client", "url and api key are required", nil)
	}
	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		http:       &http.Client{Timeout: 30 * time.Second},
		limiter:    newLimiter(0),
		attempts:   3,
		retryDelay: 500 * time.Millisecond,
		logger:     logging.NewComponentLogger(nil, "jellyfin"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewConfiguredClient builds a client from configuration.
func NewConfiguredClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "jellyfin", "new client", "missing configuration", nil)
	}
	return NewClient(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey,
		WithHTTPClient(&http.Client{Timeout: cfg.JellyfinTimeout()}),
		WithRateLimit(cfg.Jellyfin.RequestsPerSecond),
		WithRetry(cfg.Jellyfin.RetryAttempts, 500*time.Millisecond),
		WithLogger(logger),
	)
}

func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// getJSON issues a GET for path with query and decodes the JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	return retry.Do(
		func() error { return c.fetch(ctx, endpoint, out) },
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(services.Retryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Debug("retrying jellyfin request",
				logging.String("path", path),
				logging.Int("attempt", int(n)+1),
				logging.Error(err),
			)
		}),
	)
}

func (c *Client) fetch(ctx context.Context, endpoint string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "jellyfin", "build request", endpoint, err)
	}
	req.Header.Set("X-Emby-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return services.Wrap(services.ErrTransient, "jellyfin", "request", redact(endpoint), err)
	}
	defer resp.Body.Close()

	if err := statusError(resp, endpoint); err != nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return services.Wrap(services.ErrTransient, "jellyfin", "decode", redact(endpoint), err)
		}
		return services.Wrap(services.ErrValidation, "jellyfin", "decode", redact(endpoint), err)
	}
	return nil
}

func statusError(resp *http.Response, endpoint string) error {
	code := resp.StatusCode
	if code >= 200 && code < 300 {
		return nil
	}
	detail := fmt.Sprintf("%s returned %d", redact(endpoint), code)
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return services.Wrap(services.ErrConfiguration, "jellyfin", "request", detail+"; check jellyfin.api_key", nil)
	case code == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "jellyfin", "request", detail, nil)
	case code == http.StatusTooManyRequests || code >= 500:
		return services.Wrap(services.ErrTransient, "jellyfin", "request", detail, nil)
	default:
		return services.Wrap(services.ErrValidation, "jellyfin", "request", detail, nil)
	}
}

// redact drops the query string so logs and errors never carry filters or ids
// in bulk.
func redact(endpoint string) string {
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		return endpoint[:i]
	}
	return endpoint
}

// ServerInfo is the public subset of /System/Info.
type ServerInfo struct {
	ServerName string `json:"ServerName"`
	Version    string `json:"Version"`
	ID         string `json:"Id"`
}

// ServerInfo fetches server identity; useful as a credential check.
func (c *Client) ServerInfo(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	if err := c.getJSON(ctx, "/System/Info", nil, &info); err != nil {
		return ServerInfo{}, err
	}
	return info, nil
}
