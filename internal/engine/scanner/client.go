package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"
)

// ErrMissingCredential is returned when a source is asked to scan without
// its API key/token. Fatal: the run never starts.
var ErrMissingCredential = errors.New("missing API credential")

// StatusError reports a non-2xx provider response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Client is a thin JSON request/response wrapper shared by both sources.
// A token-bucket limiter paces requests below the provider quota; the
// inter-zone delay in the scanner is layered on top of it.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

func NewClient(timeout time.Duration, requestsPerSecond int, logger *log.Logger) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		logger:  logger,
	}
}

// GetJSON performs a GET with optional extra headers and decodes the JSON
// body into out.
func (c *Client) GetJSON(ctx context.Context, reqURL string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	for k, vv := range headers {
		req.Header.Set(k, vv)
	}
	return c.do(req, out)
}

// PostJSON performs a POST with a JSON body plus extra headers and decodes
// the JSON response into out.
func (c *Client) PostJSON(ctx context.Context, reqURL string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vv := range headers {
		req.Header.Set(k, vv)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return fmt.Errorf("waiting on limiter: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{Code: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
