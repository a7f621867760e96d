package sorsa

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *Client {
	c := NewClient("test-key")
	c.BaseURL = serverURL
	return c
}

func TestClient_RecentFollows_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/new-following-7d", r.URL.Path)
		assert.Equal(t, "VitalikButerin", r.URL.Query().Get("user_handle"))
		assert.Equal(t, "test-key", r.Header.Get("ApiKey"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 101, "screenName": "defi_proto", "name": "DeFi Protocol", "description": "new defi protocol", "followersCount": 150, "registerDate": "2025-06-01T00:00:00Z"},
			{"id": 102, "screeName": "legacy_handle", "followersCount": 40}
		]`))
	}))
	defer server.Close()

	accounts, err := newTestClient(server.URL).RecentFollows(context.Background(), "VitalikButerin")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "defi_proto", accounts[0].ScreenName)
	assert.Equal(t, 150, accounts[0].FollowersCount)
	assert.Equal(t, "2025-06-01T00:00:00Z", accounts[0].RegisterDate)
	assert.Equal(t, "legacy_handle", accounts[1].LegacyScreenName)
}

func TestClient_RecentFollows_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	accounts, err := newTestClient(server.URL).RecentFollows(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestClient_RecentFollows_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).RecentFollows(context.Background(), "someone")
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "someone", apiErr.Handle)
}

func TestClient_RecentFollows_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not": "a list"`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).RecentFollows(context.Background(), "someone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_RecentFollows_ConnectionRefused(t *testing.T) {
	c := NewClient("test-key")
	c.BaseURL = "http://127.0.0.1:1"

	_, err := c.RecentFollows(context.Background(), "someone")
	require.Error(t, err)

	var apiErr *Error
	assert.ErrorAs(t, err, &apiErr)
}

func TestClient_TopFollowers_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/top-following/defi_proto", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id": 7, "screenName": "whale"}]`))
	}))
	defer server.Close()

	accounts, err := newTestClient(server.URL).TopFollowers(context.Background(), "defi_proto")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "whale", accounts[0].ScreenName)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("key")
	assert.Equal(t, DefaultBaseURL, c.BaseURL)
	assert.Equal(t, DefaultTimeout, c.HTTPClient.Timeout)
}
