// Package api is a thin client for the church CMS public API.
//
// Every call either succeeds once or fails once: there is no retry, backoff or
// circuit breaking. Non-2xx responses surface as *Error, carrying the status
// code and the decoded body so callers can branch on rate limiting (429) and
// validation failures (400).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000/api"

// Client issues requests against a normalized base URL ending in /api.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets a per-request timeout on a copy of the current
// *http.Client. Zero leaves requests bounded only by the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// NewClient returns a Client for baseURL, which may be given with or without
// a trailing /api or /api/public.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    NormalizeBaseURL(baseURL),
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the canonical base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// NormalizeBaseURL canonicalizes raw so that it ends in /api and never in
// /public. An empty value yields DefaultBaseURL.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimRight(strings.TrimSpace(raw), "/")
	if u == "" {
		return DefaultBaseURL
	}
	u = strings.TrimRight(strings.TrimSuffix(u, "/public"), "/")
	if !strings.HasSuffix(u, "/api") {
		u += "/api"
	}
	return u
}

// Request performs method on path (relative to the base URL), JSON-encoding
// payload when it is non-nil. The decoded body is returned as JSON: a JSON
// response as sent, a non-JSON text body wrapped as {"message": text}, and an
// empty body as null.
func (c *Client) Request(ctx context.Context, method, path string, query url.Values, payload any) (json.RawMessage, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read %s %s: %w", method, path, err)
	}
	data := decodeBody(resp.Header.Get("Content-Type"), raw)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp.StatusCode, data)
	}
	return data, nil
}

// get is Request with GET followed by a decode into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	data, err := c.Request(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode GET %s: %w", path, err)
	}
	return nil
}

var nullBody = json.RawMessage("null")

// decodeBody never fails: a body that is not valid JSON, whatever its declared
// type, is wrapped as a message object.
func decodeBody(contentType string, raw []byte) json.RawMessage {
	if isJSON(contentType) && json.Valid(raw) {
		return json.RawMessage(raw)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return nullBody
	}
	if json.Valid([]byte(text)) {
		return json.RawMessage(text)
	}
	// Keep the text as sent: no HTML escaping of <, > and &.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]string{"message": text}); err != nil {
		return nullBody
	}
	return json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n"))
}

func isJSON(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}
