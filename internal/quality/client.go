package quality

import (
	"context"
	"net/http"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/config/configs"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/httpclient"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
)

type assessItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type assessRequest struct {
	Items []assessItem `json:"items"`
}

type itemScore struct {
	ID    string `json:"id"`
	Score int    `json:"score"`
}

type assessResponse struct {
	Scores []itemScore `json:"scores"`
}

// Client asks the assessment service to rate each item's text on a 0-100
// scale. Scores are returned as given; range checks happen in scoring.
type Client struct {
	http *httpclient.Client
}

func NewClient(cfg configs.Quality, httpClient *http.Client) *Client {
	return &Client{http: httpclient.New("quality", cfg.URL, cfg.APIKey, httpClient)}
}

func (c *Client) Assess(ctx context.Context, items []types.ContentItem) (types.QualityScore, error) {
	req := assessRequest{Items: make([]assessItem, len(items))}
	for i, item := range items {
		req.Items[i] = assessItem{ID: item.ID, Text: item.Text}
	}

	var resp assessResponse
	if err := c.http.Do(ctx, http.MethodPost, "/assess", nil, req, &resp); err != nil {
		return nil, err
	}

	scores := make(types.QualityScore, len(resp.Scores))
	for _, s := range resp.Scores {
		scores[s.ID] = s.Score
	}
	return scores, nil
}
