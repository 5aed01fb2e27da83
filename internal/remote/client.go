// Package remote provides the request/response client for the authoritative
// record store.
//
// The store exposes two collections, tasks and areas, each with independent
// list/upsert/delete calls. Every call is a single HTTP request with the
// client's timeout; there are no retries. Callers are expected to treat
// failures as a degraded-but-usable condition, not a hard stop.
package remote

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

	"github.com/tmorel/cleansync/internal/model"
)

// Config holds gateway configuration.
type Config struct {
	// BaseURL is the root of the record store API, e.g.
	// https://records.example.com
	BaseURL string

	// Token is an optional static bearer token sent on every request.
	Token string

	// Timeout bounds each individual request (default: 10s).
	Timeout time.Duration

	// HTTPClient overrides the underlying client; used by tests.
	HTTPClient *http.Client
}

// Client talks to the remote record store.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a gateway client for the record store at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("remote base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid remote base URL %q: %w", cfg.BaseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		http:    httpClient,
	}, nil
}

// ListTasks fetches the full task collection from the remote store.
func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var wire []wireTask
	if err := c.getJSON(ctx, "/api/v1/tasks", &wire); err != nil {
		return nil, fmt.Errorf("failed to list remote tasks: %w", err)
	}

	tasks := make([]model.Task, 0, len(wire))
	for _, w := range wire {
		tasks = append(tasks, taskFromWire(w))
	}
	return tasks, nil
}

// UpsertTask inserts or fully replaces one task in the remote store.
func (c *Client) UpsertTask(ctx context.Context, task model.Task) error {
	path := "/api/v1/tasks/" + url.PathEscape(task.ID)
	if err := c.putJSON(ctx, path, taskToWire(task)); err != nil {
		return fmt.Errorf("failed to upsert remote task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteTask removes one task from the remote store. Deleting a task that
// doesn't exist is not an error (idempotent).
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	path := "/api/v1/tasks/" + url.PathEscape(id)
	if err := c.delete(ctx, path); err != nil {
		return fmt.Errorf("failed to delete remote task %s: %w", id, err)
	}
	return nil
}

// ListAreas fetches the full area collection from the remote store.
func (c *Client) ListAreas(ctx context.Context) ([]model.Area, error) {
	var wire []wireArea
	if err := c.getJSON(ctx, "/api/v1/areas", &wire); err != nil {
		return nil, fmt.Errorf("failed to list remote areas: %w", err)
	}

	areas := make([]model.Area, 0, len(wire))
	for _, w := range wire {
		areas = append(areas, areaFromWire(w))
	}
	return areas, nil
}

// UpsertArea inserts or fully replaces one area in the remote store.
func (c *Client) UpsertArea(ctx context.Context, area model.Area) error {
	path := "/api/v1/areas/" + url.PathEscape(area.Name)
	if err := c.putJSON(ctx, path, areaToWire(area)); err != nil {
		return fmt.Errorf("failed to upsert remote area %s: %w", area.Name, err)
	}
	return nil
}

// DeleteArea removes one area from the remote store.
func (c *Client) DeleteArea(ctx context.Context, name string) error {
	path := "/api/v1/areas/" + url.PathEscape(name)
	if err := c.delete(ctx, path); err != nil {
		return fmt.Errorf("failed to delete remote area %s: %w", name, err)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) putJSON(ctx context.Context, path string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// do sends the request and normalizes non-2xx responses into errors.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("remote returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	return resp, nil
}
