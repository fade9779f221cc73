// Package analysis is the HTTP client for the upstream market-analysis
// service.  Each feed call is independently retried on rate-limit responses
// with exponential backoff; every other failure surfaces immediately so the
// acquisition flow can isolate it to its own category.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/venturesonar/venturesonar/internal/config"
	"github.com/venturesonar/venturesonar/internal/infrastructure/cache"
	"github.com/venturesonar/venturesonar/internal/infrastructure/monitoring/logging"
	"github.com/venturesonar/venturesonar/internal/infrastructure/monitoring/prometheus"
	"github.com/venturesonar/venturesonar/pkg/errors"
)

var userAgent = "venturesonar/" + config.Version

// sleepFunc waits for d or until ctx is done.  Replaced in tests.
type sleepFunc func(ctx context.Context, d time.Duration) error

// copyViaJSON assigns an arbitrary loader result to a typed destination
// pointer, mirroring what the cache does on a hit.
func copyViaJSON(src, dest interface{}) error {
	data, err := json.Marshal(src)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to copy response")
	}
	return json.Unmarshal(data, dest)
}

func defaultSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Client talks to the analysis service.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         logging.Logger
	maxRetries     int
	initialBackoff time.Duration
	sleep          sleepFunc
	cache          cache.Cache
	cacheTTL       time.Duration
	metrics        *prometheus.Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger.
func WithLogger(log logging.Logger) Option {
	return func(c *Client) { c.logger = log }
}

// WithCache enables response caching.  Cached responses bypass the upstream
// entirely, including its rate limits.
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithMetrics wires fetch instrumentation.
func WithMetrics(m *prometheus.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient builds a Client from configuration.
func NewClient(cfg config.AnalysisConfig, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "analysis base url required")
	}
	parsed, err := url.Parse(cfg.BaseURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, errors.New(errors.ErrCodeValidation, "analysis base url must be http or https")
	}

	c := &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		logger:         logging.NewNopLogger(),
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		sleep:          defaultSleep,
		metrics:        prometheus.NewNopMetrics(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// backoffDelay returns the wait before retry number attempt (0-based):
// initialBackoff doubled per prior retry.
func (c *Client) backoffDelay(attempt int) time.Duration {
	return c.initialBackoff * (1 << uint(attempt))
}

// do issues one request with rate-limit retries and decodes the response into
// result.  Network, upstream, and decode failures are never retried; only a
// rate-limit signal (HTTP 429 or a textual marker in the body) is, up to
// maxRetries times.
func (c *Client) do(ctx context.Context, category, method, path string, body, result interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode request")
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffDelay(attempt - 1)
			c.logger.Info("rate limited, backing off",
				logging.String("category", category),
				logging.Int("attempt", attempt),
				logging.Duration("delay", delay),
			)
			c.metrics.FetchRetries.WithLabelValues(category).Inc()
			if err := c.sleep(ctx, delay); err != nil {
				return err
			}
		}

		err := c.doOnce(ctx, category, method, path, payload, result)
		if err == nil {
			c.metrics.FetchAttempts.WithLabelValues(category, "ok").Inc()
			return nil
		}
		if !errors.IsRateLimited(err) {
			c.metrics.FetchAttempts.WithLabelValues(category, "error").Inc()
			return err
		}
		c.metrics.FetchAttempts.WithLabelValues(category, "rate_limited").Inc()
		lastErr = err
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, category, method, path string, payload []byte, result interface{}) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.New().String())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(err, errors.ErrCodeAcqNetwork, fmt.Sprintf("%s fetch failed", category))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeAcqNetwork, "failed to read response")
	}

	c.logger.Debug("analysis request",
		logging.String("method", method),
		logging.String("path", path),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode == http.StatusTooManyRequests {
		return errors.New(errors.ErrCodeAcqRateLimited, fmt.Sprintf("%s feed rate limited", category))
	}
	if resp.StatusCode >= 400 {
		if errors.ContainsRateLimitMarker(string(respBody)) {
			return errors.New(errors.ErrCodeAcqRateLimited, fmt.Sprintf("%s feed rate limited", category))
		}
		return errors.Newf(errors.ErrCodeAcqUpstream, "%s feed returned HTTP %d", category, resp.StatusCode)
	}

	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		// Some upstreams report throttling as plain text with a 200.
		if errors.ContainsRateLimitMarker(string(respBody)) {
			return errors.New(errors.ErrCodeAcqRateLimited, fmt.Sprintf("%s feed rate limited", category))
		}
		return errors.Wrap(err, errors.ErrCodeAcqDecode, fmt.Sprintf("%s feed returned malformed payload", category))
	}
	return nil
}
