package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"bookrec/internal/book"
	"bookrec/internal/config"
	"bookrec/internal/logger"
	"bookrec/internal/metrics"
	"bookrec/internal/middleware"
)

// Endpoint names, used for logs and metric labels.
const (
	EndpointCatalog   = "catalog"
	EndpointRecommend = "recommend"
	EndpointAuthor    = "author"
	EndpointCategory  = "category"
	EndpointSearch    = "search"
)

// Client talks to the catalog and recommendation service.
type Client struct {
	cfg     config.SourceConfig
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
	schema  *Schema
}

func New(cfg config.SourceConfig, bcfg config.BreakerConfig) (*Client, error) {
	c := &Client{
		cfg:     cfg,
		client:  newHTTPClient(cfg),
		limiter: newLimiter(cfg),
		breaker: newBreaker("recommendation-service", bcfg),
	}
	if cfg.ValidateSchema {
		s, err := NewSchema()
		if err != nil {
			return nil, err
		}
		c.schema = s
	}
	return c, nil
}

func newHTTPClient(cfg config.SourceConfig) *http.Client {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	return &http.Client{
		Transport: middleware.Chain(t, middleware.RequestID, middleware.RequestLogger),
		Timeout:   cfg.Timeout,
	}
}

func newLimiter(cfg config.SourceConfig) *rate.Limiter {
	if cfg.RatePerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
}

func newBreaker(name string, bcfg config.BreakerConfig) *gobreaker.CircuitBreaker[[]byte] {
	metrics.BreakerState.WithLabelValues(name).Set(0)

	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: bcfg.MaxRequests,
		Interval:    bcfg.Interval,
		Timeout:     bcfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bcfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= bcfg.FailureRatio
		},
		// superseded fetches are cancelled on purpose and say nothing about the service
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logrus.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("breaker.state")
			metrics.BreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// EscapeSegment percent-encodes s for use as a single URL path segment.
// Spaces become %20 and reserved characters such as & and / are escaped.
func EscapeSegment(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Catalog returns every known title.
func (c *Client) Catalog(ctx context.Context) ([]book.Book, error) {
	return c.get(ctx, EndpointCatalog, c.cfg.CatalogPath, nil)
}

// Recommend returns books similar to title.
func (c *Client) Recommend(ctx context.Context, title string) ([]book.Book, error) {
	path := strings.ReplaceAll(c.cfg.RecommendPath, config.TitlePlaceholder, EscapeSegment(title))
	return c.get(ctx, EndpointRecommend, path, c.limitQuery())
}

// ByAuthor returns books whose authors match name.
func (c *Client) ByAuthor(ctx context.Context, name string) ([]book.Book, error) {
	q := c.limitQuery()
	q.Set("name", name)
	return c.get(ctx, EndpointAuthor, c.cfg.AuthorPath, q)
}

// ByCategory returns books whose categories match name.
func (c *Client) ByCategory(ctx context.Context, name string) ([]book.Book, error) {
	q := c.limitQuery()
	q.Set("name", name)
	return c.get(ctx, EndpointCategory, c.cfg.CategoryPath, q)
}

// Search lets the service pick title, author or category matching for query.
func (c *Client) Search(ctx context.Context, query string) ([]book.Book, error) {
	q := c.limitQuery()
	q.Set("query", query)
	return c.get(ctx, EndpointSearch, c.cfg.SearchPath, q)
}

// BreakerState reports the current circuit breaker state.
func (c *Client) BreakerState() gobreaker.State {
	return c.breaker.State()
}

func (c *Client) limitQuery() url.Values {
	q := url.Values{}
	if c.cfg.Limit > 0 {
		q.Set("n", strconv.Itoa(c.cfg.Limit))
	}
	return q
}

func (c *Client) buildURL(path string, q url.Values) string {
	u := c.cfg.BaseURL + path
	if len(q) == 0 {
		return u
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return u + sep + q.Encode()
}

func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values) ([]book.Book, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.SourceRequestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
		return nil, fmt.Errorf("%s: rate limit: %w", endpoint, err)
	}

	defer logger.Track(ctx, endpoint+" request")()
	start := time.Now()

	target := c.buildURL(path, q)
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, endpoint, target)
	})
	metrics.SourceRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		outcome := "transport_error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = "rejected"
		}
		metrics.SourceRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}

	books, err := shapeBooks(endpoint, data, c.schema)
	var remote *RemoteError
	switch {
	case errors.As(err, &remote):
		metrics.SourceRequestsTotal.WithLabelValues(endpoint, "remote_error").Inc()
	case err != nil:
		logger.For(ctx).WithError(err).WithField("endpoint", endpoint).Warn("source.payload.invalid")
		metrics.SourceRequestsTotal.WithLabelValues(endpoint, "malformed").Inc()
	default:
		metrics.SourceRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	}
	return books, err
}

// do performs the GET and returns the body. The HTTP status is logged but not
// interpreted: the payload alone says whether the call failed.
func (c *Client) do(ctx context.Context, endpoint, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream do: %w", err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	entry := logger.For(ctx)
	if entry.Logger.IsLevelEnabled(logrus.DebugLevel) {
		entry.WithFields(logrus.Fields{
			"endpoint":      endpoint,
			"status":        res.StatusCode,
			"response_body": string(data),
		}).Debug("source.response")
	}
	return data, nil
}
