// Package api is the single request pipeline to the blog REST API. Every
// outgoing request carries the session's bearer token when one exists, and
// every 401/403 response tears the session down globally, regardless of
// which view issued the request. There is no retry, backoff, or request
// deduplication: each call is delivered at most once.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"blogctl/internal/blog"
)

// TokenSource supplies the current bearer token; "" means no session, and
// the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// APIError is a non-2xx response. Message is the server-provided message
// body, passed through verbatim for display; no client-side
// re-interpretation happens.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsAuthFailure reports whether err is a 401 or 403 response.
func IsAuthFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

// Client dispatches requests to the API with auth attachment and
// auth-failure recovery.
type Client struct {
	base          *url.URL
	hc            *http.Client
	tokens        TokenSource
	onAuthFailure func()
	logger        blog.Logger
	idgen         blog.IDGenerator
}

// NewClient creates a Client for the API at baseURL. onAuthFailure runs on
// every 401/403 response (session teardown and re-authentication entry);
// it may be nil. hc may be nil for http.DefaultClient.
func NewClient(baseURL string, hc *http.Client, tokens TokenSource, onAuthFailure func(), logger blog.Logger, idgen blog.IDGenerator) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing API base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("API base URL must be absolute: %q", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	if logger == nil {
		logger = blog.NewNopLogger()
	}
	if idgen == nil {
		idgen = blog.UUIDGenerator{}
	}
	return &Client{
		base:          base,
		hc:            hc,
		tokens:        tokens,
		onAuthFailure: onAuthFailure,
		logger:        logger,
		idgen:         idgen,
	}, nil
}

// do sends one request and decodes the response into out (skipped when out
// is nil). Non-2xx statuses come back as *APIError; 401/403 additionally
// trigger the global auth-failure hook before returning.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", c.idgen.New())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("sending %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		// Session invalid. Tear down globally, whatever view sent this.
		if c.onAuthFailure != nil {
			c.onAuthFailure()
		}
		return &APIError{Status: resp.StatusCode, Message: serverMessage(resp, "session is no longer valid")}
	}

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: serverMessage(resp, http.StatusText(resp.StatusCode))}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// serverMessage extracts the server's message body, falling back when the
// body has none.
func serverMessage(resp *http.Response, fallback string) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		return body.Message
	}
	return fallback
}
