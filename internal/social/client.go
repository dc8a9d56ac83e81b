package social

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/config/configs"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/httpclient"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/SIMPLYBOYS/campaign_monitor/pkg/logger"
)

type searchResponse struct {
	Items      []types.ContentItem `json:"items"`
	NextCursor string              `json:"nextCursor"`
}

type postRequest struct {
	Text string `json:"text"`
}

type postResponse struct {
	ID string `json:"id"`
}

// Client talks to the social platform gateway: hashtag search and posting
// from the operator account.
type Client struct {
	http   *httpclient.Client
	dryRun bool
}

func NewClient(cfg configs.Social, httpClient *http.Client) *Client {
	return &Client{
		http:   httpclient.New("social", cfg.BaseURL, cfg.Token, httpClient),
		dryRun: cfg.DryRun,
	}
}

// Search implements Searcher against GET /search.
func (c *Client) Search(ctx context.Context, tag string, pageSize int, cursor string) ([]types.ContentItem, string, error) {
	q := url.Values{}
	q.Set("q", tag)
	q.Set("limit", strconv.Itoa(pageSize))
	q.Set("mode", "latest")
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	var resp searchResponse
	if err := c.http.Do(ctx, http.MethodGet, "/search", q, nil, &resp); err != nil {
		return nil, "", err
	}
	return resp.Items, resp.NextCursor, nil
}

// Announce publishes text from the operator account. In dry-run mode the
// text is only logged.
func (c *Client) Announce(ctx context.Context, text string) error {
	if c.dryRun {
		logger.Info("Dry run: would have posted: %s", text)
		return nil
	}

	var resp postResponse
	if err := c.http.Do(ctx, http.MethodPost, "/posts", nil, postRequest{Text: text}, &resp); err != nil {
		return err
	}
	logger.Info("Posted %s", resp.ID)
	return nil
}
