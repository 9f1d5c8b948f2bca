package main

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

	"podsculpt/internal/api"
)

// apiClient talks to the daemon's HTTP API.
type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(addr string) *apiClient {
	base := strings.TrimSpace(addr)
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	base = strings.TrimRight(base, "/")
	return &apiClient{
		base: base,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) submit(ctx context.Context, rssURL string) (api.Submission, error) {
	var resp api.SubmitResponse
	err := c.do(ctx, http.MethodPost, "/api/submit", api.SubmitRequest{RSSURL: rssURL}, &resp)
	return resp.Submission, err
}

func (c *apiClient) status(ctx context.Context) (api.DaemonStatus, error) {
	var resp api.DaemonStatus
	err := c.do(ctx, http.MethodGet, "/api/status", nil, &resp)
	return resp, err
}

func (c *apiClient) queue(ctx context.Context, statuses []string) ([]api.Submission, error) {
	path := "/api/queue"
	if len(statuses) > 0 {
		values := url.Values{}
		for _, status := range statuses {
			values.Add("status", status)
		}
		path += "?" + values.Encode()
	}
	var resp api.QueueListResponse
	err := c.do(ctx, http.MethodGet, path, nil, &resp)
	return resp.Items, err
}

func (c *apiClient) show(ctx context.Context, id int64) (api.Submission, error) {
	var resp api.QueueItemResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/queue/%d", id), nil, &resp)
	return resp.Item, err
}

func (c *apiClient) clipLink(ctx context.Context, id int64, clipNumber int) (api.ClipLinkResponse, error) {
	var resp api.ClipLinkResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/clips/%d/%d", id, clipNumber), nil, &resp)
	return resp, err
}

func (c *apiClient) retry(ctx context.Context, ids []int64) (int64, error) {
	var resp api.RetryResponse
	err := c.do(ctx, http.MethodPost, "/api/retry", api.RetryRequest{IDs: ids}, &resp)
	return resp.Retried, err
}

func (c *apiClient) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable at %s: %w", c.base, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("daemon: %s", readAPIError(resp.Body, resp.StatusCode))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func readAPIError(body io.Reader, statusCode int) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return payload.Error
	}
	return http.StatusText(statusCode)
}
