package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
)

// maxErrorBody bounds how much of a failed response is kept in the error.
const maxErrorBody = 512

// Client calls a JSON HTTP collaborator. Transport failures, 429 and 5xx
// responses come back as TransientProviderError; other non-2xx statuses as
// APIError.
type Client struct {
	provider string
	baseURL  string
	apiKey   string
	client   *http.Client
}

// New creates a client for the collaborator at baseURL. A nil httpClient uses
// http.DefaultClient.
func New(provider, baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		client:   httpClient,
	}
}

// Do sends body (if non-nil) as JSON to path and decodes the response into
// out (if non-nil).
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	raw, err := c.DoRaw(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &errors.APIError{StatusCode: http.StatusOK, Message: c.provider + ": malformed response", Err: err}
	}
	return nil
}

// DoRaw is Do without decoding; it returns the response body.
func (c *Client) DoRaw(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", c.provider, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", c.provider, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Transient(c.provider, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Transient(c.provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &errors.APIError{StatusCode: resp.StatusCode, Message: c.provider + " returned " + resp.Status, Err: fmt.Errorf("%s", truncate(raw))}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, errors.Transient(c.provider, apiErr)
		}
		return nil, apiErr
	}
	return raw, nil
}

func truncate(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
