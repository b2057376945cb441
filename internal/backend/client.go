package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/httpclient"
)

// DefaultBaseURL is where the restaurant backend listens in development
const DefaultBaseURL = "http://localhost:8020"

// Doer sends a request. *httpclient.BreakerClient and *httpclient.Client satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Client talks to the restaurant REST backend
type Client struct {
	baseURL string
	doer    Doer
	logger  *slog.Logger
}

// New creates a backend client rooted at baseURL
func New(baseURL string, doer Doer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    doer,
		logger:  logger,
	}
}

type tokenKey struct{}

// WithToken returns a context carrying the bearer token sent with backend requests
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token stored by WithToken
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// Ping checks that the backend answers at all
func (c *Client) Ping(ctx context.Context) error {
	return c.getJSON(ctx, "/all_dishes", nil, nil)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.send(ctx, http.MethodGet, path, query, nil, "", out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, query, body, contentType, out)
}

func (c *Client) sendForm(ctx context.Context, path string, form url.Values, out any) error {
	return c.send(ctx, http.MethodPost, path, nil, strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", out)
}

// send performs one request and decodes a 2xx body into out (when non-nil).
// Non-2xx answers become *APIError, transport failures and 5xx become
// *TransportError and undecodable bodies become *ParseError.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	endpoint := method + " " + path

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		c.logger.WarnContext(ctx, "backend request failed",
			slog.String("endpoint", endpoint),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		var serverErr *httpclient.ServerError
		if errors.As(err, &serverErr) {
			return &TransportError{Endpoint: endpoint, Status: serverErr.Status, Err: err}
		}
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.DebugContext(ctx, "backend request",
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode >= 500 {
		apiErr := readAPIError(endpoint, resp)
		return &TransportError{Endpoint: endpoint, Status: resp.StatusCode, Err: apiErr}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(endpoint, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ParseError{Endpoint: endpoint, Err: err}
	}
	return nil
}

func idPath(prefix string, id int64) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}
