// Package client is a small JSON client for the wproofd admin API
package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"
)

const (
	apiPrefix      = "/api/v1alpha1"
	defaultTimeout = 30 * time.Second
)

// Client talks to one wproofd server
type Client struct {
	base *url.URL
	http *http.Client
}

type ClientOption func(*Client)

// WithTLSConfig uses cfg for HTTPS connections
func WithTLSConfig(cfg *tls.Config) ClientOption {
	return func(c *Client) {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = cfg
		c.http = &http.Client{Transport: tr, Timeout: defaultTimeout}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// NewClient returns a client for the server at baseURL. Any path on baseURL
// is dropped.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	switch {
	case err != nil:
		return nil, fmt.Errorf("invalid base URL: %w", err)
	case u.Scheme == "" || u.Host == "":
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	c := &Client{
		base: &url.URL{Scheme: u.Scheme, User: u.User, Host: u.Host},
		http: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// endpoint resolves an already escaped API path
func (c *Client) endpoint(escaped string) string {
	return c.base.String() + path.Join(apiPrefix, escaped)
}

// doRequest sends body as JSON and decodes a JSON answer into out. Either
// may be nil.
func (c *Client) doRequest(ctx context.Context, method, escapedPath string, body, out any) error {
	var payload io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		payload = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(escapedPath), payload)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, escapedPath, err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp, out)
}
