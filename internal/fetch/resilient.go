package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

var (
	// ErrUnexpectedStatus is returned for any non-2xx upstream response.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrCircuitOpen is returned without calling upstream while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	errNoHTTPClient = errors.New("http client not configured")
)

// Client wraps an *http.Client with a per-upstream circuit breaker.
// It never retries: a failed call is reported once and callers treat it as missing data.
type Client struct {
	name    string
	http    *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewBreaker returns the circuit breaker settings shared by every upstream.
func NewBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
}

// BreakerError wraps an error returned by a breaker, mapping rejected calls to ErrCircuitOpen.
func BreakerError(name string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w: %v", name, ErrCircuitOpen, err)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// NewClient creates a Client for the named upstream.
func NewClient(name string, client *http.Client) *Client {
	return &Client{
		name:    name,
		http:    client,
		circuit: NewBreaker(name),
	}
}

// Name returns the upstream name used for the breaker and log lines.
func (c *Client) Name() string {
	return c.name
}

// Do executes the request built by buildRequest through the circuit breaker.
// On success the caller owns the response body.
func (c *Client) Do(ctx context.Context, buildRequest func() (*http.Request, error)) (*http.Response, error) {
	if c.http == nil {
		return nil, errNoHTTPClient
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req, err := buildRequest()
	if err != nil {
		return nil, err
	}
	req = req.WithContext(ctx)

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.http.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		}
		return resp, nil
	})
	if err != nil {
		return nil, BreakerError(c.name, err)
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type from circuit breaker", c.name)
	}
	return resp, nil
}

// GetJSON issues a GET to rawURL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, out any) error {
	resp, err := c.Do(ctx, func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, rawURL, nil)
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.name, err)
	}
	return nil
}
