package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/tipster-edge/internal/config"
)

// ErrCircuitOpen is returned once too many consecutive requests have failed.
var ErrCircuitOpen = errors.New("circuit breaker open")

// HTTPConfig holds configuration for the transport
type HTTPConfig struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	RateLimit         float64 // requests per second, 0 disables limiting
	CircuitBreakerMax int     // consecutive failures before the circuit opens
}

// DefaultHTTPConfig returns recommended defaults
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:           10 * time.Second,
		MaxRetries:        3,
		RetryWaitMin:      100 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         10.0,
		CircuitBreakerMax: 5,
	}
}

// HTTPConfigFrom overlays the client section of the service config on the defaults.
func HTTPConfigFrom(cfg config.ClientConfig) HTTPConfig {
	out := DefaultHTTPConfig()
	if cfg.TimeoutSeconds > 0 {
		out.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	out.MaxRetries = cfg.MaxRetries
	out.RateLimit = cfg.RateLimit
	return out
}

// transport wraps retryablehttp.Client with rate limiting and a circuit breaker
type transport struct {
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  *logrus.Entry

	mu                sync.Mutex
	circuitBreakerMax int
	consecutiveErrors int
	lastError         error
}

func newTransport(cfg HTTPConfig, log *logrus.Logger) *transport {
	entry := log.WithField("component", "client")

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = retryPolicy
	// Hand the final response back so API errors keep their body.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = leveledLogger{entry}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &transport{
		client:            retryClient,
		limiter:           rate.NewLimiter(limit, 1),
		circuitBreakerMax: cfg.CircuitBreakerMax,
		logger:            entry,
	}
}

// do executes a request with rate limiting and the circuit breaker.
func (t *transport) do(ctx context.Context, req *retryablehttp.Request) (*http.Response, error) {
	t.mu.Lock()
	if t.circuitBreakerMax > 0 && t.consecutiveErrors >= t.circuitBreakerMax {
		last := t.lastError
		t.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, last)
	}
	t.mu.Unlock()

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	resp, err := t.client.Do(req.WithContext(ctx))

	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case err != nil:
		t.recordFailure(err)
		return nil, err
	case resp.StatusCode >= 500:
		t.recordFailure(fmt.Errorf("server returned %d", resp.StatusCode))
	default:
		t.consecutiveErrors = 0
		t.lastError = nil
	}
	return resp, nil
}

// recordFailure must be called with mu held.
func (t *transport) recordFailure(err error) {
	t.consecutiveErrors++
	t.lastError = err
	if t.circuitBreakerMax > 0 && t.consecutiveErrors == t.circuitBreakerMax {
		t.logger.WithError(err).WithField("failures", t.consecutiveErrors).Warn("Circuit breaker opened")
	}
}

func (t *transport) close() {
	t.client.HTTPClient.CloseIdleConnections()
}

// retryPolicy retries network errors, 429 and gateway style 5xx responses.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, err
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

// leveledLogger routes retryablehttp's messages through logrus.
type leveledLogger struct {
	entry *logrus.Entry
}

func (l leveledLogger) fields(kv []interface{}) *logrus.Entry {
	e := l.entry
	for i := 0; i+1 < len(kv); i += 2 {
		e = e.WithField(fmt.Sprint(kv[i]), kv[i+1])
	}
	return e
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.fields(kv).Error(msg) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.fields(kv).Warn(msg) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.fields(kv).Debug(msg) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.fields(kv).Trace(msg) }
