package trends

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientDailyTrendsStripsGuardPrefix(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/trends/api/dailytrends", r.URL.Path)
		require.Equal(t, "VN", r.URL.Query().Get("geo"))
		require.Equal(t, "en-US", r.URL.Query().Get("hl"))

		_, _ = w.Write([]byte(")]}'\n{\"default\":{\"trendingSearchesDays\":[{\"trendingSearches\":[{\"title\":{\"query\":\"sea games\"}},{\"title\":{\"query\":\" tet holiday \"}}]}]}}"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.HTTPClient = server.Client()

	topics, err := client.DailyTrends(context.Background(), "VN")
	require.NoError(t, err)
	require.Equal(t, []string{"sea games", "tet holiday"}, topics)
}

func TestClientRealtimeTrends(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/trends/api/realtimetrends", r.URL.Path)
		require.Equal(t, "TH", r.URL.Query().Get("geo"))

		_, _ = w.Write([]byte(")]}'{\"storySummaries\":{\"trendingStories\":[{\"title\":\"songkran festival\"}]}}"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.HTTPClient = server.Client()

	topics, err := client.RealtimeTrends(context.Background(), "TH")
	require.NoError(t, err)
	require.Equal(t, []string{"songkran festival"}, topics)
}

func TestClientErrorsOnNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("slow down"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.HTTPClient = server.Client()

	_, err := client.DailyTrends(context.Background(), "VN")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 429")
}

func TestClientDefaults(t *testing.T) {
	client := NewClient("")
	require.Equal(t, defaultBaseURL, client.BaseURL)
	require.Equal(t, "en-US", client.lang())
	require.Equal(t, 360, client.tz())
}
