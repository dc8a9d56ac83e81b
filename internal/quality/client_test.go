package quality

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/config/configs"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/SIMPLYBOYS/campaign_monitor/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assess", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var req assessRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Items, 2)
		assert.Equal(t, assessItem{ID: "a", Text: "great project"}, req.Items[0])

		json.NewEncoder(w).Encode(assessResponse{Scores: []itemScore{{ID: "a", Score: 80}, {ID: "b", Score: 150}}})
	}))
	defer server.Close()

	c := NewClient(configs.Quality{URL: server.URL, APIKey: "key"}, server.Client())
	got, err := c.Assess(context.Background(), []types.ContentItem{
		{ID: "a", Text: "great project"},
		{ID: "b", Text: "gm"},
	})

	require.NoError(t, err)
	assert.Equal(t, types.QualityScore{"a": 80, "b": 150}, got)
}

func TestAssessUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(configs.Quality{URL: server.URL}, server.Client()).Assess(context.Background(), []types.ContentItem{{ID: "a"}})
	assert.True(t, errors.IsTransient(err))
}
