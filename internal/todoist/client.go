package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/teemow/todoistguard/internal/instrumentation"
	"github.com/teemow/todoistguard/internal/logging"
)

const (
	// DefaultBaseURL is the Todoist API host.
	DefaultBaseURL = "https://api.todoist.com"

	// DefaultAPIVersion is the path version segment, overridable with TODOIST_API_VERSION.
	DefaultAPIVersion = "v1"

	// DefaultTimeout bounds a single call including retries.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of attempts for a retryable failure.
	DefaultMaxRetries = 3

	// DefaultRateLimit keeps well below Todoist's 450 requests per 15 minutes.
	DefaultRateLimit = 1.0

	// DefaultRateBurst lets short bursts (bulk verifications) through.
	DefaultRateBurst = 50

	// requestIDHeader makes mutations idempotent across retries.
	requestIDHeader = "X-Request-Id"
)

// Config configures a Client.
type Config struct {
	Token        string
	BaseURL      string
	APIVersion   string
	Timeout      time.Duration
	MaxRetries   int
	InitialDelay time.Duration
	RateLimit    float64
	RateBurst    int

	// HTTPClient supplies the base transport. The bearer token is layered on top.
	HTTPClient *http.Client
	Logger     logging.Logger
}

// Client talks to the Todoist REST API.
type Client struct {
	http      *http.Client
	baseURL   *url.URL
	apiPrefix string
	timeout   time.Duration
	retryCfg  retry.Config
	limiter   *rate.Limiter
	logger    logging.Logger

	mu      sync.RWMutex
	metrics *instrumentation.Metrics
}

var _ API = (*Client)(nil)

// NewClient creates a Todoist client authenticated with a personal API token.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("todoist API token is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 500 * time.Millisecond
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = DefaultRateBurst
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.DefaultLogger()
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid todoist base URL: %w", err)
	}

	baseTransport := http.DefaultTransport
	if cfg.HTTPClient != nil && cfg.HTTPClient.Transport != nil {
		baseTransport = cfg.HTTPClient.Transport
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.Token,
		TokenType:   "Bearer",
	})

	version := strings.TrimPrefix(cfg.APIVersion, "v")

	return &Client{
		http: &http.Client{
			Transport: &oauth2.Transport{Source: tokenSource, Base: baseTransport},
		},
		baseURL:   base,
		apiPrefix: "/api/v" + version + "/",
		timeout:   cfg.Timeout,
		retryCfg: retry.Config{
			MaxAttempts:   cfg.MaxRetries,
			InitialDelay:  cfg.InitialDelay,
			BackoffPolicy: retry.BackoffExponential,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		logger:  cfg.Logger,
	}, nil
}

// SetMetrics attaches a metrics recorder for API operation metrics.
func (c *Client) SetMetrics(m *instrumentation.Metrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

func (c *Client) getMetrics() *instrumentation.Metrics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.metrics
}

// rawResponse is what survives the retry loop: a status and a body.
type rawResponse struct {
	status int
	body   []byte
}

// do sends one API request. op names the operation for errors, spans and metrics.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	ctx, span := instrumentation.StartAPISpan(ctx, op)
	defer span.End()

	start := time.Now()
	err := c.execute(ctx, op, method, path, query, in, out)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
		c.logger.Debug("todoist request failed", "operation", op, "error", err.Error())
	}
	if m := c.getMetrics(); m != nil {
		m.RecordAPIOperation(ctx, op, status, time.Since(start))
	}
	return err
}

func (c *Client) execute(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
	}

	endpoint := c.baseURL.ResolveReference(&url.URL{Path: c.apiPrefix + strings.TrimLeft(path, "/")})
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	// One id for every attempt so the server can drop duplicates.
	requestID := ""
	if method != http.MethodGet {
		requestID = uuid.NewString()
	}

	t := timeout.New[*rawResponse](timeout.Config{DefaultTimeout: c.timeout})
	r := retry.New[*rawResponse](c.retryCfg)

	var (
		mu      sync.Mutex
		lastErr error
	)
	record := func(err error) error {
		mu.Lock()
		defer mu.Unlock()
		lastErr = err
		return err
	}

	res, err := t.Execute(ctx, c.timeout, func(ctx context.Context) (*rawResponse, error) {
		return r.Do(ctx, func(ctx context.Context) (*rawResponse, error) {
			res, err := c.roundTrip(ctx, method, endpoint.String(), payload, requestID)
			if err != nil {
				return nil, record(fmt.Errorf("%s: %w", op, err))
			}
			if apiErr := toAPIError(op, res); apiErr != nil && apiErr.Retryable() {
				return nil, record(apiErr)
			}
			return res, nil
		})
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s: %w", op, ctxErr)
		}
		mu.Lock()
		last := lastErr
		mu.Unlock()
		if last != nil && !errors.Is(err, context.DeadlineExceeded) {
			return last
		}
		return fmt.Errorf("%s: Todoist API request timeout after %s: %w", op, c.timeout, err)
	}

	if apiErr := toAPIError(op, res); apiErr != nil {
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(res.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.body, out); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, payload []byte, requestID string) (*rawResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requestID != "" {
		req.Header.Set(requestIDHeader, requestID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &rawResponse{status: resp.StatusCode, body: data}, nil
}

func toAPIError(op string, res *rawResponse) *APIError {
	if res.status >= 200 && res.status < 300 {
		return nil
	}
	msg := strings.TrimSpace(string(res.body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return &APIError{Op: op, StatusCode: res.status, Message: msg}
}

func cursorQuery(cursor string, limit int) url.Values {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func itemPath(collection, id string, suffix ...string) string {
	parts := append([]string{collection, url.PathEscape(id)}, suffix...)
	return strings.Join(parts, "/")
}
