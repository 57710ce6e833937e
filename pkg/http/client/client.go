package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

type Response struct {
	StatusCode int
	Body       []byte
}

type Interface interface {
	Get(ctx context.Context, path string) (*Response, error)
}

// StatusError is returned when the upstream answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is worth another attempt
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

var ErrCircuitOpen = errors.New("circuit breaker open")

// abandonedError marks a failure caused by the caller's context ending, which
// says nothing about the upstream's health
type abandonedError struct {
	err error
}

func (e *abandonedError) Error() string { return e.err.Error() }

func (e *abandonedError) Unwrap() error { return e.err }

type Client struct {
	name       string
	baseURL    string
	userAgent  string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration
	maxBackoff time.Duration
	breaker    *gobreaker.CircuitBreaker
	GetFunc    func(ctx context.Context, path string) (*Response, error)
}

var _ Interface = (*Client)(nil)

type Options struct {
	Name       string
	BaseURL    string
	UserAgent  string
	Timeout    time.Duration
	MaxRetries int // negative disables retries
	Backoff    time.Duration
	MaxBackoff time.Duration
	// Consecutive failures before the breaker opens, 0 means 5
	BreakerThreshold uint32
	BreakerTimeout   time.Duration
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	if opts.MaxRetries == 0 {
		opts.MaxRetries = 2
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	if opts.Backoff == 0 {
		opts.Backoff = 250 * time.Millisecond
	}
	if opts.MaxBackoff == 0 {
		opts.MaxBackoff = 2 * time.Second
	}

	if opts.Name == "" {
		opts.Name = "upstream"
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "swellcheck/1.0"
	}

	threshold := opts.BreakerThreshold
	if threshold == 0 {
		threshold = 5
	}
	if opts.BreakerTimeout == 0 {
		opts.BreakerTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			var abandoned *abandonedError
			if errors.As(err, &abandoned) {
				return true
			}
			// 4xx answers mean the upstream is alive
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return !statusErr.Retryable()
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return &Client{
		name:      opts.Name,
		baseURL:   opts.BaseURL,
		userAgent: opts.UserAgent,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		maxRetries: opts.MaxRetries,
		backoff:    opts.Backoff,
		maxBackoff: opts.MaxBackoff,
		breaker:    breaker,
	}
}

// Get fetches path relative to the base URL, retrying transient failures
// with exponential backoff behind the client's circuit breaker.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	if c.GetFunc != nil {
		return c.GetFunc(ctx, path)
	}

	var fullURL string
	if c.baseURL == "" {
		fullURL = path // If no base URL, treat path as full URL
	} else {
		fullURL = c.baseURL + path
	}

	var lastErr error
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := c.breaker.Execute(func() (interface{}, error) {
			resp, err := c.do(ctx, fullURL)
			if err != nil && ctx.Err() != nil {
				return nil, &abandonedError{err: err}
			}
			return resp, err
		})
		if err == nil {
			return result.(*Response), nil
		}

		var abandoned *abandonedError
		if errors.As(err, &abandoned) {
			return nil, ctx.Err()
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s: %v", ErrCircuitOpen, c.name, err)
		}

		lastErr = err
		var statusErr *StatusError
		if errors.As(err, &statusErr) && !statusErr.Retryable() {
			return nil, err
		}
		if attempt >= c.maxRetries {
			return nil, lastErr
		}

		delay := c.backoff << attempt
		if delay > c.maxBackoff {
			delay = c.maxBackoff
		}

		log.Debug().
			Str("upstream", c.name).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Err(err).
			Msg("Retrying upstream request")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) do(ctx context.Context, fullURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Debug().Err(err).Msg("Error closing response body")
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(body)
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
