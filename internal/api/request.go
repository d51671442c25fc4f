package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rickgao/kalshi-mm/internal/version"
)

// HTTPError is returned for any response outside the 2xx range.
// The transport never retries; callers decide.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("kalshi api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// doRequest performs one signed call and returns the status code and raw body.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) (int, []byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	release, err := c.spacer.acquire(ctx)
	if err != nil {
		return 0, nil, err
	}
	defer release()

	// Sign after waiting on the spacer so the timestamp is fresh.
	if c.creds != nil {
		headers, err := c.creds.Headers(method, req.URL.Path)
		if err != nil {
			return 0, nil, err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, 0, start)
		return 0, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.observe(method, resp.StatusCode, start)
	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, respBody, &HTTPError{
			StatusCode: resp.StatusCode,
			Body:       respBody,
		}
	}

	return resp.StatusCode, respBody, nil
}

func (c *Client) observe(method string, status int, start time.Time) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, status, time.Since(start))
	}
}

// call performs a request and decodes a JSON response into result.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, payload, result any) error {
	_, body, err := c.doRequest(ctx, method, path, query, payload)
	if err != nil {
		return err
	}
	return decode(body, result)
}

// get performs a GET request.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	return c.call(ctx, http.MethodGet, path, query, nil, result)
}

// delete performs a DELETE request.
func (c *Client) delete(ctx context.Context, path string, result any) error {
	return c.call(ctx, http.MethodDelete, path, nil, nil, result)
}

func decode(body []byte, result any) error {
	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
