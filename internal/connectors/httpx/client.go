// Package httpx is the shared HTTP kit for provider clients: a
// context-aware JSON client with proactive rate limiting and uniform
// mapping of upstream failures onto the domain error taxonomy.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/parkerlabs/revpipe/internal/core/domain"
)

const (
	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRate is the proactive request rate when a connector does
	// not specify its own (requests per second).
	DefaultRate = 4.0

	// MaxLinkedPages caps page-link chains so a misbehaving server
	// that keeps emitting next links cannot loop a sync forever. The
	// connector logs and stops at the cap rather than failing.
	MaxLinkedPages = 20

	// maxErrorBody bounds how much of an error response is retained.
	maxErrorBody = 64 * 1024
)

// Auth mutates a request with the provider's authentication scheme.
type Auth func(*http.Request)

// BearerAuth authenticates with an Authorization: Bearer header.
func BearerAuth(token string) Auth {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// TokenAuth authenticates with an Authorization: Token header, as used
// by the email platform.
func TokenAuth(token string) Auth {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Token "+token)
	}
}

// HeaderAuth authenticates with an arbitrary header.
func HeaderAuth(name, value string) Auth {
	return func(req *http.Request) {
		req.Header.Set(name, value)
	}
}

// StatusError is a non-success response. The connector decides whether
// the retained body parses as the provider's documented error shape.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// Client is a rate-limited JSON HTTP client shared by all connectors.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client throttled to rps requests per second.
// Zero or negative rps selects DefaultRate.
func NewClient(rps float64) *Client {
	if rps <= 0 {
		rps = DefaultRate
	}
	return &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// GetJSON performs a GET and decodes the JSON response into out.
// Non-2xx responses return a *StatusError carrying the body.
func (c *Client) GetJSON(ctx context.Context, url string, auth Auth, out any) error {
	return c.doJSON(ctx, http.MethodGet, url, auth, nil, out)
}

// PostJSON performs a POST with a JSON body and decodes the response.
func (c *Client) PostJSON(ctx context.Context, url string, auth Auth, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	return c.doJSON(ctx, http.MethodPost, url, auth, encoded, out)
}

func (c *Client) doJSON(ctx context.Context, method, url string, auth Auth, body []byte, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != nil {
		auth(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		retained, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, Body: retained}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrProviderUnavailable, err)
	}
	return nil
}

// ProviderError converts a client error into the domain taxonomy for
// one source. parse extracts the provider's documented error message
// from a non-success body; an empty result means the payload did not
// match the documented shape and the provider counts as unavailable.
func ProviderError(source domain.SourceID, err error, parse func([]byte) string) error {
	if err == nil {
		return nil
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		message := ""
		if parse != nil {
			message = parse(statusErr.Body)
		}
		return &domain.ProviderError{
			Source:     source,
			StatusCode: statusErr.StatusCode,
			Message:    message,
		}
	}
	return err
}
