// Package remote talks to the optional remote user/data backend. Every call
// is rate limited and goes through a circuit breaker.
package remote

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

	apperrors "github.com/gmsas95/nutritrack/internal/errors"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Recorder receives one outcome per remote call.
type Recorder interface {
	RecordRemoteCall(operation string, ok bool)
}

type Options struct {
	BaseURL         string
	APIKey          string
	Timeout         time.Duration
	RequestsPerSec  float64
	Burst           int
	BreakerFailures int
	BreakerCooldown time.Duration
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	recorder   Recorder
	logger     *zap.Logger
}

func NewClient(opts Options, recorder Recorder, logger *zap.Logger) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.BreakerFailures <= 0 {
		opts.BreakerFailures = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}

	limit := rate.Inf
	if opts.RequestsPerSec > 0 {
		limit = rate.Limit(opts.RequestsPerSec)
	}

	failures := uint32(opts.BreakerFailures)
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "remote-backend",
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// a rejected request proves the backend is up
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, apperrors.ErrRemoteRejected)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(limit, opts.Burst),
		breaker:    breaker,
		recorder:   recorder,
		logger:     logger,
	}
}

// State reports the breaker state: "closed", "half-open" or "open".
func (c *Client) State() string {
	return c.breaker.State().String()
}

func (c *Client) do(ctx context.Context, operation, method, path string, payload, out interface{}) (err error) {
	defer func() {
		if c.recorder != nil {
			c.recorder.RecordRemoteCall(operation, err == nil)
		}
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.WrapAs(apperrors.ErrRemoteUnavailable, fmt.Errorf("rate limiter: %w", err))
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.roundTrip(ctx, method, path, payload)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return apperrors.WrapAs(apperrors.ErrRemoteUnavailable, err)
		}
		return err
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return apperrors.WrapAs(apperrors.ErrRemoteUnavailable, fmt.Errorf("decoding response: %w", err))
		}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	u := c.baseURL + path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "nutritrack/1.0")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("Remote request", zap.String("method", method), zap.String("url", u))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.WrapAs(apperrors.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, apperrors.WrapAs(apperrors.ErrRemoteUnavailable, fmt.Errorf("reading response: %w", err))
	}

	switch {
	case resp.StatusCode >= 500:
		c.logger.Warn("Remote request failed", zap.Int("status", resp.StatusCode), zap.String("url", u))
		return nil, apperrors.WrapAs(apperrors.ErrRemoteUnavailable, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(data)))
	case resp.StatusCode >= 400:
		return nil, apperrors.WrapAs(apperrors.ErrRemoteRejected, fmt.Errorf("HTTP %d: %s", resp.StatusCode, truncate(data)))
	}
	return data, nil
}

func truncate(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func escape(id string) string {
	return url.PathEscape(id)
}
