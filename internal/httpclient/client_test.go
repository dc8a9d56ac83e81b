package httpclient

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSendsJSONAndDecodes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/echo", r.URL.Path)
		assert.Equal(t, "x", r.URL.Query().Get("q"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(map[string]string{"echo": in["msg"]})
	}))
	defer server.Close()

	c := New("echo", server.URL+"/", "secret", server.Client())
	var out map[string]string
	err := c.Do(context.Background(), http.MethodPost, "/v1/echo", url.Values{"q": {"x"}}, map[string]string{"msg": "hi"}, &out)

	require.NoError(t, err)
	assert.Equal(t, "hi", out["echo"])
}

func TestDoClassifiesStatus(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"server error", http.StatusBadGateway, true},
		{"rate limited", http.StatusTooManyRequests, true},
		{"bad request", http.StatusBadRequest, false},
		{"unauthorized", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			err := New("svc", server.URL, "", nil).Do(context.Background(), http.MethodGet, "/", nil, nil, nil)

			require.Error(t, err)
			assert.Equal(t, tt.transient, errors.IsTransient(err))
			var apiErr *errors.APIError
			require.True(t, stderrors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestDoTransportFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	err := New("svc", server.URL, "", nil).Do(context.Background(), http.MethodGet, "/", nil, nil, nil)
	assert.True(t, errors.IsTransient(err))
}

func TestDoMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer server.Close()

	var out map[string]string
	err := New("svc", server.URL, "", nil).Do(context.Background(), http.MethodGet, "/", nil, nil, &out)

	var apiErr *errors.APIError
	assert.True(t, stderrors.As(err, &apiErr))
	assert.False(t, errors.IsTransient(err))
}
