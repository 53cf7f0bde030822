package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rflorenc/devops-auth-check/internal/logging"
)

// ErrNoResponse marks failures where no HTTP response was received
// (DNS, connection refused, timeout).
var ErrNoResponse = errors.New("no response received")

// APIError is a response that was received but is not usable: a non-2xx
// status, or a body that does not match the expected schema.
type APIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, logging.Truncate(e.Body, 200))
}

func (e *APIError) Unwrap() error { return e.Err }

// Response is the record kept for a single call, used for diagnostics only.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client is an HTTP client that attaches a fixed Authorization header.
type Client struct {
	authHeader string
	requestID  string
	httpClient *http.Client
}

// NewClient creates a Client sending authHeader, with timeout applied per request.
func NewClient(authHeader string, timeout time.Duration) *Client {
	return &Client{
		authHeader: authHeader,
		requestID:  uuid.NewString(),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RequestID is sent as X-Request-ID on every call made by this client.
func (c *Client) RequestID() string { return c.requestID }

// Do performs an authenticated GET and returns the response whatever its
// status. Only transport failures produce an error, wrapping ErrNoResponse.
func (c *Client) Do(ctx context.Context, rawURL string, params url.Values) (*Response, error) {
	u, err := buildURL(rawURL, params)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", c.requestID)
	// Ask for a 401 instead of a redirect to the interactive sign-in page.
	req.Header.Set("X-TFS-FedAuthRedirect", "Suppress")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w: %w", u, ErrNoResponse, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("GET %s: reading response: %w: %w", u, ErrNoResponse, err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// Get performs an authenticated GET and returns the body. Non-2xx statuses
// are returned as *APIError.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (*Response, error) {
	resp, err := c.Do(ctx, rawURL, params)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, &APIError{StatusCode: resp.StatusCode, Body: string(resp.Body)}
	}
	return resp, nil
}

// buildURL merges params into the query string of rawURL.
func buildURL(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, v := range params {
			q[k] = v
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// redactHeaders flattens h for logging, hiding credentials and cookies.
func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		switch http.CanonicalHeaderKey(k) {
		case "Authorization", "Set-Cookie", "Cookie":
			out[k] = "[REDACTED]"
		default:
			out[k] = strings.Join(v, ", ")
		}
	}
	return out
}
