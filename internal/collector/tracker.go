// Package collector pulls campaign data from the external tracker API on a
// schedule and runs enabled modules on their configured cron expressions.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/adpulse/adpulse/internal/store"
)

const httpTimeout = 30 * time.Second

// Client is a thin HTTP client for the tracker API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient returns a client for the tracker at baseURL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: httpTimeout},
	}
}

// FetchCampaigns lists every campaign known to the tracker.
func (c *Client) FetchCampaigns(ctx context.Context) ([]store.Campaign, error) {
	var out struct {
		Campaigns []store.Campaign `json:"campaigns"`
	}
	if err := c.get(ctx, "/api/campaigns", nil, &out); err != nil {
		return nil, fmt.Errorf("fetch campaigns: %w", err)
	}
	return out.Campaigns, nil
}

// FetchDailyStats returns the per-day stats for one campaign in [from, to].
func (c *Client) FetchDailyStats(ctx context.Context, campaignID, from, to string) ([]store.DailyStat, error) {
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	var out struct {
		Stats []store.DailyStat `json:"stats"`
	}
	path := "/api/campaigns/" + url.PathEscape(campaignID) + "/stats"
	if err := c.get(ctx, path, q, &out); err != nil {
		return nil, fmt.Errorf("fetch stats for %s: %w", campaignID, err)
	}
	return out.Stats, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tracker returned %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
