package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/lawdesk/internal/client/metrics"
	"github.com/dmitrijs2005/lawdesk/internal/common"
	"github.com/dmitrijs2005/lawdesk/internal/logging"
	"github.com/dmitrijs2005/lawdesk/internal/netx"
	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

const maxResponseBytes = 8 << 20

// TokenSource yields the current bearer token, "" when logged out.
type TokenSource interface {
	Token() string
}

// Options configures HTTPClient. Zero values fall back to the defaults below.
type Options struct {
	BaseURL        string
	Timeout        time.Duration
	LongTimeout    time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration
	RateLimit      float64
	RateBurst      int
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.LongTimeout <= 0 {
		o.LongTimeout = 120 * time.Second
	}
	if o.RetryAttempts <= 0 {
		o.RetryAttempts = 2
	}
	if o.RetryBaseDelay <= 0 {
		o.RetryBaseDelay = 500 * time.Millisecond
	}
	if o.RetryMaxDelay <= 0 {
		o.RetryMaxDelay = 4 * time.Second
	}
	if o.RateBurst <= 0 {
		o.RateBurst = 1
	}
	return o
}

// HTTPClient talks JSON over HTTP to the lawdesk backend.
type HTTPClient struct {
	opts    Options
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	tokens  TokenSource
	log     logging.Logger
	metrics *metrics.Metrics
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client (tests, proxies).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient validates the base URL and builds a client. tokens may be nil.
func NewHTTPClient(opts Options, tokens TokenSource, options ...Option) (*HTTPClient, error) {
	opts = opts.withDefaults()

	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", opts.BaseURL)
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	c := &HTTPClient{
		opts:    opts,
		base:    base,
		http:    &http.Client{},
		limiter: rate.NewLimiter(limit, opts.RateBurst),
		tokens:  tokens,
		log:     logging.Nop(),
	}
	for _, o := range options {
		o(c)
	}
	return c, nil
}

// request describes one API call.
type request struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
	long   bool
	retry  bool
}

type response struct {
	status      int
	contentType string
	body        []byte
}

func (r *response) isJSON() bool {
	if strings.Contains(r.contentType, "json") {
		return true
	}
	if strings.Contains(r.contentType, "html") {
		return false
	}
	trimmed := bytes.TrimSpace(r.body)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') && json.Valid(trimmed)
}

// call performs req and decodes a JSON body into out (if non-nil).
func (c *HTTPClient) call(ctx context.Context, req request, out any) error {
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", req.op, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, req request) (*response, error) {
	if !req.retry {
		return c.attempt(ctx, req)
	}

	backoff := retry.NewExponential(c.opts.RetryBaseDelay)
	backoff = retry.WithCappedDuration(c.opts.RetryMaxDelay, backoff)
	backoff = retry.WithMaxRetries(uint64(c.opts.RetryAttempts-1), backoff)

	var resp *response
	first := true
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if !first {
			c.metrics.ObserveRetry(req.op)
		}
		first = false

		r, err := c.attempt(ctx, req)
		if err != nil {
			if isTransient(err) {
				return retry.RetryableError(err)
			}
			return err
		}
		resp = r
		return nil
	})
	return resp, err
}

func isTransient(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && netx.IsTransientStatus(apiErr.Status)
}

func (c *HTTPClient) attempt(ctx context.Context, req request) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limit: %w", req.op, err)
	}

	timeout := c.opts.Timeout
	if req.long {
		timeout = c.opts.LongTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", req.op, err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.endpoint(req.path, req.query), body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.op, err)
	}

	requestID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, requestID)
	httpReq.Header.Set("Accept", "application/json, text/html")
	httpReq.Header.Set(common.RequestIDHeaderName, requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.metrics.ObserveRequest(req.op, "unavailable", time.Since(start))
		c.log.Warn(ctx, "request failed", "op", req.op, "path", req.path, "error", err)
		if netx.IsConnectionError(err) {
			return nil, fmt.Errorf("%s: %w: %w", req.op, ErrUnavailable, err)
		}
		return nil, fmt.Errorf("%s: %w", req.op, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(req.op, "unavailable", elapsed)
		return nil, fmt.Errorf("%s: read body: %w: %w", req.op, ErrUnavailable, err)
	}

	c.log.Debug(ctx, "request done",
		"op", req.op, "method", req.method, "path", req.path,
		"status", httpResp.StatusCode, "duration", elapsed)

	if httpResp.StatusCode >= http.StatusBadRequest {
		c.metrics.ObserveRequest(req.op, "error", elapsed)
		return nil, newAPIError(httpResp.StatusCode, raw)
	}

	c.metrics.ObserveRequest(req.op, "ok", elapsed)
	return &response{
		status:      httpResp.StatusCode,
		contentType: httpResp.Header.Get("Content-Type"),
		body:        raw,
	}, nil
}

// endpoint joins the base URL with an already escaped path.
func (c *HTTPClient) endpoint(path string, query url.Values) string {
	u := c.base.String() + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// segment escapes one user-supplied path segment.
func segment(s string) string {
	return url.PathEscape(s)
}
