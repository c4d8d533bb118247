package store

import "time"

// Campaign is a tracked advertising campaign as reported by the tracker API.
type Campaign struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	TrafficSource string    `json:"traffic_source"`
	Network       string    `json:"network"`
	Offer         string    `json:"offer"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// DailyStat is one day of aggregated campaign performance.
// Date uses the YYYY-MM-DD form throughout the store.
type DailyStat struct {
	CampaignID  string  `json:"campaign_id"`
	Date        string  `json:"date"`
	Clicks      int     `json:"clicks"`
	Conversions int     `json:"conversions"`
	Cost        float64 `json:"cost"`
	Revenue     float64 `json:"revenue"`
}

// Totals aggregates performance over a period.
type Totals struct {
	Clicks      int     `json:"clicks"`
	Conversions int     `json:"conversions"`
	Cost        float64 `json:"cost"`
	Revenue     float64 `json:"revenue"`
	Profit      float64 `json:"profit"`
	ROI         float64 `json:"roi"`
}

// CampaignTotals is a campaign with its totals over a period.
type CampaignTotals struct {
	CampaignID string `json:"campaign_id"`
	Name       string `json:"name"`
	Totals
}

// DayTotals aggregates one day across every campaign.
type DayTotals struct {
	Date string `json:"date"`
	Totals
}

// GroupTotals aggregates a period by a grouping dimension value
// (traffic source, affiliate network or offer).
type GroupTotals struct {
	Key       string `json:"key"`
	Campaigns int    `json:"campaigns"`
	Totals
}

// finalize fills the derived fields from the raw sums.
func (t *Totals) finalize() {
	t.Profit = t.Revenue - t.Cost
	if t.Cost > 0 {
		t.ROI = t.Profit / t.Cost
	}
}
