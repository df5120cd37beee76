package dashclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/five82/dashterm/internal/dash"
)

// API is the backend surface used by the frontend.
type API interface {
	Health(ctx context.Context) error
	FetchLayout(ctx context.Context) (dash.Component, error)
	FetchDependencies(ctx context.Context) ([]dash.Dependency, error)
	Update(ctx context.Context, req dash.UpdateRequest) (dash.UpdateResponse, error)
}

var _ API = (*Client)(nil)

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Path string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Code, e.Body)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// Client talks to the dashboard backend.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultUserAgent = "dashterm/0.1"
	requestTimeout   = 5 * time.Second
	maxErrorBody     = 512
)

// NewClient builds a Client for baseURL, which may omit the scheme.
func NewClient(baseURL string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized backend address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Health succeeds when the backend answers its liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, dash.PathHealth, nil, nil)
}

// FetchLayout retrieves the component tree.
func (c *Client) FetchLayout(ctx context.Context) (dash.Component, error) {
	var layout dash.Component
	if err := c.do(ctx, http.MethodGet, dash.PathLayout, nil, &layout); err != nil {
		return dash.Component{}, err
	}
	return layout, nil
}

// FetchDependencies retrieves the registered bindings.
func (c *Client) FetchDependencies(ctx context.Context) ([]dash.Dependency, error) {
	var deps []dash.Dependency
	if err := c.do(ctx, http.MethodGet, dash.PathDependencies, nil, &deps); err != nil {
		return nil, err
	}
	return deps, nil
}

// Update asks the backend to evaluate one binding.
func (c *Client) Update(ctx context.Context, req dash.UpdateRequest) (dash.UpdateResponse, error) {
	var resp dash.UpdateResponse
	if err := c.do(ctx, http.MethodPost, dash.PathUpdate, req, &resp); err != nil {
		return dash.UpdateResponse{}, err
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("backend url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse backend url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("backend url %q has no host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
