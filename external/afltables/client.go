package afltables

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/footyarchive/gamelog-api/internal/platform/logging"
	"github.com/footyarchive/gamelog-api/internal/platform/resilience"
	"github.com/footyarchive/gamelog-api/internal/usecase"
)

const (
	// Per-request timeouts are clamped to this window: slow archive pages
	// are normal, so very short caller timeouts get raised, and nothing
	// is allowed to hang past two minutes.
	minRequestTimeout = 4 * time.Second
	maxRequestTimeout = 120 * time.Second

	maxResponseBytes = 6 << 20

	defaultIndexWorkers = 6

	// Player pages carry a "game by game" heading; anything without it is
	// some other archive page and must not be treated as a profile.
	profileMarker = "game by game"
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	RequestTimeout time.Duration
	Retry          resilience.RetryPolicy
	CircuitBreaker resilience.CircuitBreakerConfig
	IndexWorkers   int
	Logger         *logging.Logger
}

// Client reads the statistics archive over HTTP. All fetches share one
// retry policy, one circuit breaker and request de-duplication by URL.
type Client struct {
	httpClient     *http.Client
	baseURL        *url.URL
	timeout        time.Duration
	retry          resilience.RetryPolicy
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	indexWorkers   int
	logger         *logging.Logger
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse archive base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, crerr.Newf("archive base url %q must be absolute", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	indexWorkers := cfg.IndexWorkers
	if indexWorkers < 1 {
		indexWorkers = defaultIndexWorkers
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        base,
		timeout:        clampTimeout(cfg.RequestTimeout),
		retry:          resilience.NormalizeRetryPolicy(cfg.Retry),
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		indexWorkers:   indexWorkers,
		logger:         logger,
	}, nil
}

func clampTimeout(d time.Duration) time.Duration {
	if d < minRequestTimeout {
		return minRequestTimeout
	}
	if d > maxRequestTimeout {
		return maxRequestTimeout
	}
	return d
}

// ResolveURL absolutizes an archive-relative path against the base URL.
// Absolute URLs pass through untouched.
func (c *Client) ResolveURL(pathOrURL string) string {
	trimmed := strings.TrimSpace(pathOrURL)
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	return c.baseURL.String() + "/" + strings.TrimLeft(trimmed, "/")
}

// FetchProfile downloads and parses one player page. HTTP 4xx responses and
// pages without the profile marker surface as usecase.ErrNotProfilePage so
// probe resolution can skip them; everything else that fails maps to
// usecase.ErrUpstreamUnavailable.
func (c *Client) FetchProfile(ctx context.Context, pageURL string, seasonHint int) (usecase.ArchiveProfile, error) {
	fullURL := c.ResolveURL(pageURL)

	raw, err := c.fetch(ctx, fullURL)
	if err != nil {
		if fe, ok := AsFetchError(err); ok && fe.Kind == FetchKindHTTP && fe.Status >= 400 && fe.Status < 500 && fe.Status != 429 {
			return usecase.ArchiveProfile{}, crerr.Mark(err, usecase.ErrNotProfilePage)
		}
		if errors.Is(err, usecase.ErrDependencyUnavailable) {
			return usecase.ArchiveProfile{}, err
		}
		return usecase.ArchiveProfile{}, crerr.Mark(err, usecase.ErrUpstreamUnavailable)
	}

	if !bytes.Contains(bytes.ToLower(raw), []byte(profileMarker)) {
		return usecase.ArchiveProfile{}, crerr.Mark(crerr.Newf("page %s lacks profile marker", fullURL), usecase.ErrNotProfilePage)
	}

	page, err := parseProfile(raw, fullURL, seasonHint)
	if err != nil {
		return usecase.ArchiveProfile{}, fmt.Errorf("parse profile %s: %w", fullURL, err)
	}

	return usecase.ArchiveProfile{
		URL:   fullURL,
		Title: page.Title,
		Rows:  page.Rows,
		Raw:   raw,
	}, nil
}

func (c *Client) fetch(ctx context.Context, fullURL string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "archive circuit breaker rejected request", "state", c.breaker.State(), "url", fullURL)
			return nil, fmt.Errorf("%w: statistics archive is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil {
				if isCircuitFailure(reqErr) {
					c.breaker.RecordFailure()
				} else {
					c.breaker.RecordSuccess()
				}
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	return raw, nil
}

// isCircuitFailure keeps breaker accounting to transient faults only:
// a page that cleanly 404s is a healthy upstream.
func isCircuitFailure(err error) bool {
	fe, ok := AsFetchError(err)
	if !ok {
		return false
	}
	return fe.retryable()
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr *FetchError
	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		raw, fetchErr := c.attempt(ctx, fullURL)
		if fetchErr == nil {
			return raw, nil
		}
		lastErr = fetchErr

		if !fetchErr.retryable() {
			return nil, fetchErr
		}
		if attempt == c.retry.MaxRetries {
			break
		}
		if err := c.retry.Wait(ctx, attempt); err != nil {
			return nil, err
		}
	}

	c.logger.WarnContext(ctx, "archive request failed", "url", fullURL, "error", lastErr, "retries", c.retry.MaxRetries)
	return nil, lastErr
}

func (c *Client) attempt(ctx context.Context, fullURL string) ([]byte, *FetchError) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchKindNetwork, URL: fullURL, cause: err}
	}
	req.Header.Set("Accept", "text/html")
	req.Header.Set("User-Agent", "gamelog-api/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeoutErr(err) {
			return nil, &FetchError{Kind: FetchKindTimeout, URL: fullURL, cause: err}
		}
		return nil, &FetchError{Kind: FetchKindNetwork, URL: fullURL, cause: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if readErr != nil {
		if isTimeoutErr(readErr) {
			return nil, &FetchError{Kind: FetchKindTimeout, URL: fullURL, cause: readErr}
		}
		return nil, &FetchError{Kind: FetchKindNetwork, URL: fullURL, cause: readErr}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{Kind: FetchKindHTTP, Status: resp.StatusCode, URL: fullURL}
	}

	return raw, nil
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}
