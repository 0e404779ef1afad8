package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/listingmatch/backend/internal/domain"
	"github.com/listingmatch/backend/internal/logger"
	"golang.org/x/time/rate"
)

// Config holds configuration for the remote source client
type Config struct {
	// Timeout bounds connecting and waiting for response headers. Reading the
	// body is bounded only by the caller's context.
	Timeout       time.Duration
	Retries       int
	RatePerSecond float64
	BaseBackoff   time.Duration
	UserAgent     string
}

// Client fetches line-delimited sources over HTTP
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	retries     int
	baseBackoff time.Duration
	userAgent   string
	logger      logger.Logger
}

// NewClient creates a new remote source client
func NewClient(cfg Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	perSecond := cfg.RatePerSecond
	if perSecond <= 0 {
		perSecond = 5
	}
	backoff := cfg.BaseBackoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "listingmatch/1.0"
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          10,
	}

	return &Client{
		httpClient:  &http.Client{Transport: transport},
		rateLimiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		retries:     retries,
		baseBackoff: backoff,
		userAgent:   userAgent,
		logger:      log,
	}
}

// exponentialBackoff returns the wait before retrying after attempt (1-based).
func (c *Client) exponentialBackoff(attempt int) time.Duration {
	return c.baseBackoff * time.Duration(1<<(attempt-1))
}

// Fetch downloads url and returns its body. The caller must close it.
// Transport errors, 429 and 5xx responses are retried; other statuses fail at once.
func (c *Client) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, retry, err := c.fetchOnce(ctx, url)
		if err == nil {
			c.logger.Debug("remote source opened", logger.String("url", url), logger.Int("attempt", attempt))
			return body, nil
		}
		if !retry {
			return nil, err
		}

		lastErr = err
		c.logger.Warn("remote fetch failed",
			logger.String("url", url),
			logger.Int("attempt", attempt),
			logger.Error(err),
		)
		if attempt == c.retries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.exponentialBackoff(attempt)):
		}
	}

	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, url string) (io.ReadCloser, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: failed to create request: %v", domain.ErrRemoteFetch, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("%w: %v", domain.ErrRemoteFetch, err)
	}

	if resp.StatusCode == http.StatusOK {
		return resp.Body, false, nil
	}

	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
	return nil, retry, fmt.Errorf("%w: status %d", domain.ErrRemoteFetch, resp.StatusCode)
}
