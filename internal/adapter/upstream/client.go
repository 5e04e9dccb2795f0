// Package upstream provides the HTTP client that fetches the jackpot page and
// the winning-numbers feed.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	psotel "github.com/Strob0t/powerscrape/internal/adapter/otel"
	"github.com/Strob0t/powerscrape/internal/config"
	"github.com/Strob0t/powerscrape/internal/domain"
	"github.com/Strob0t/powerscrape/internal/resilience"
)

var errBodyTooLarge = errors.New("response body too large")

// FetchError reports a failed upstream fetch. It matches domain.ErrFetch.
type FetchError struct {
	URL    string
	Status int // 0 when no response was received
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports whether target is domain.ErrFetch.
func (e *FetchError) Is(target error) bool { return target == domain.ErrFetch }

// Client fetches upstream documents over HTTP.
type Client struct {
	httpClient *http.Client
	userAgent  string
	maxBody    int64
	breaker    *resilience.Breaker
	metrics    *psotel.Metrics
}

// NewClient creates an upstream client bounded by cfg.Timeout per fetch.
func NewClient(cfg config.Upstream) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: psotel.Transport(http.DefaultTransport),
		},
		userAgent: cfg.UserAgent,
		maxBody:   cfg.MaxBodyBytes,
	}
}

// SetBreaker attaches a circuit breaker to all fetches.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// SetMetrics records fetch durations on m.
func (c *Client) SetMetrics(m *psotel.Metrics) {
	c.metrics = m
}

// Fetch returns the body behind rawURL. Transport errors, non-2xx statuses,
// oversized bodies and an open circuit all yield a *FetchError.
func (c *Client) Fetch(ctx context.Context, rawURL string) (body []byte, err error) {
	ctx, span := psotel.StartFetchSpan(ctx, rawURL)
	start := time.Now()
	defer func() {
		c.metrics.Fetched(ctx, hostOf(rawURL), time.Since(start).Seconds(), err)
		psotel.EndSpan(span, err)
	}()

	status := 0
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()
		status = resp.StatusCode

		reader := io.Reader(resp.Body)
		if c.maxBody > 0 {
			reader = io.LimitReader(resp.Body, c.maxBody+1)
		}
		data, err := io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if c.maxBody > 0 && int64(len(data)) > c.maxBody {
			return errBodyTooLarge
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("unexpected status %s", http.StatusText(resp.StatusCode))
		}

		body = data
		return nil
	}

	if c.breaker != nil {
		err = c.breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		return nil, &FetchError{URL: rawURL, Status: status, Err: err}
	}
	return body, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
