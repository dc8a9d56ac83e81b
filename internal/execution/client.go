package execution

import (
	"context"
	"net/http"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/config/configs"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/httpclient"
)

type executeRequest struct {
	Action string      `json:"action"`
	Params interface{} `json:"params"`
}

type executeResponse struct {
	Response string `json:"response"`
}

// Client submits actions to the custodial execution agent, which signs and
// broadcasts them from the campaign wallet. Its reply is free text that the
// caller must interpret.
type Client struct {
	http *httpclient.Client
}

func NewClient(cfg configs.Execution, httpClient *http.Client) *Client {
	return &Client{http: httpclient.New("execution", cfg.URL, cfg.APIKey, httpClient)}
}

// Execute runs action with params and returns the agent's response text.
func (c *Client) Execute(ctx context.Context, action string, params interface{}) (string, error) {
	var resp executeResponse
	if err := c.http.Do(ctx, http.MethodPost, "/execute", nil, executeRequest{Action: action, Params: params}, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}
