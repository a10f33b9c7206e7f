package trends

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
)

const (
	defaultBaseURL = "https://trends.google.com"

	// The trends API prefixes JSON bodies with an anti-hijacking guard that
	// must be stripped before decoding.
	jsonGuardPrefix = ")]}'"
)

// Client fetches trending searches via direct HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Lang       string
	TZOffset   int
}

// NewClient returns a client with defaults applied.
func NewClient(baseURL string) *Client {
	u := strings.TrimSpace(baseURL)
	if u == "" {
		u = defaultBaseURL
	}
	return &Client{
		BaseURL:  u,
		Lang:     "en-US",
		TZOffset: 360,
	}
}

type dailyTrendsResponse struct {
	Default struct {
		TrendingSearchesDays []struct {
			TrendingSearches []struct {
				Title struct {
					Query string `json:"query"`
				} `json:"title"`
			} `json:"trendingSearches"`
		} `json:"trendingSearchesDays"`
	} `json:"default"`
}

type realtimeTrendsResponse struct {
	StorySummaries struct {
		TrendingStories []struct {
			Title string `json:"title"`
		} `json:"trendingStories"`
	} `json:"storySummaries"`
}

// DailyTrends fetches the daily trending searches for a geo code.
func (c *Client) DailyTrends(ctx context.Context, geo string) ([]string, error) {
	body, err := c.get(ctx, "/trends/api/dailytrends", url.Values{
		"hl":  {c.lang()},
		"tz":  {fmt.Sprintf("%d", c.tz())},
		"geo": {strings.TrimSpace(geo)},
	})
	if err != nil {
		return nil, err
	}

	var parsed dailyTrendsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode daily trends: %w", err)
	}

	var topics []string
	for _, day := range parsed.Default.TrendingSearchesDays {
		for _, search := range day.TrendingSearches {
			if title := strings.TrimSpace(search.Title.Query); title != "" {
				topics = append(topics, title)
			}
		}
	}
	return topics, nil
}

// RealtimeTrends fetches realtime trending stories for a geo code.
func (c *Client) RealtimeTrends(ctx context.Context, geo string) ([]string, error) {
	body, err := c.get(ctx, "/trends/api/realtimetrends", url.Values{
		"hl":  {c.lang()},
		"tz":  {fmt.Sprintf("%d", c.tz())},
		"geo": {strings.TrimSpace(geo)},
		"cat": {"all"},
		"fi":  {"0"},
		"fs":  {"0"},
		"ri":  {"300"},
		"rs":  {"20"},
	})
	if err != nil {
		return nil, err
	}

	var parsed realtimeTrendsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode realtime trends: %w", err)
	}

	var topics []string
	for _, story := range parsed.StorySummaries.TrendingStories {
		if title := strings.TrimSpace(story.Title); title != "" {
			topics = append(topics, title)
		}
	}
	return topics, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("trends client not configured")
	}

	ctx, cancel := withTimeout(ctx, c.Timeout)
	if cancel != nil {
		defer cancel()
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + path + "?" + query.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck // best-effort cleanup

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("trends request failed: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return stripJSONGuard(body), nil
}

func stripJSONGuard(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte(jsonGuardPrefix)) {
		trimmed = bytes.TrimSpace(trimmed[len(jsonGuardPrefix):])
	}
	return trimmed
}

func (c *Client) lang() string {
	if c.Lang == "" {
		return "en-US"
	}
	return c.Lang
}

func (c *Client) tz() int {
	if c.TZOffset == 0 {
		return 360
	}
	return c.TZOffset
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, nil
	}
	return context.WithTimeout(ctx, timeout)
}
