package analysis

import (
	"context"
	"fmt"

	"github.com/adpulse/adpulse/internal/modules"
	"github.com/adpulse/adpulse/internal/store"
)

// BudgetAllocator proposes a spend split that shifts budget toward the
// campaigns with the best recent ROI.
type BudgetAllocator struct {
	st *store.Store
}

func NewBudgetAllocator(st *store.Store) *BudgetAllocator {
	return &BudgetAllocator{st: st}
}

func (b *BudgetAllocator) Metadata() modules.Metadata {
	return modules.Metadata{
		ID:          "budget_allocator",
		Name:        "Budget Allocator",
		Category:    "optimization",
		Description: "Proposes reallocating spend toward the highest-ROI campaigns",
		Version:     "1.0.0",
		Priority:    80,
		Tags:        []string{"budget", "roi"},
	}
}

func (b *BudgetAllocator) DefaultConfig() modules.Config {
	return modules.Config{
		Enabled:         true,
		AlertsEnabled:   false,
		TimeoutSeconds:  30,
		CacheTTLSeconds: 3600,
		Params: map[string]any{
			"days":  7,
			"top_n": 10,
		},
		ParamMeta: map[string]modules.ParamSpec{
			"days": {
				Label: "Window in days", Type: "integer",
				Min: fptr(1), Max: fptr(90), Default: 7,
			},
			"top_n": {
				Label: "Campaigns to rebalance", Type: "integer",
				Min: fptr(2), Max: fptr(50), Default: 10,
			},
		},
	}
}

func (b *BudgetAllocator) ValidateConfig(cfg modules.Config) error {
	return validateConfig(cfg)
}

func (b *BudgetAllocator) Analyze(ctx context.Context, cfg modules.Config) (map[string]any, error) {
	days := cfg.IntParam("days", 7)
	topN := cfg.IntParam("top_n", 10)
	from, to := window(days)

	totals, err := b.st.CampaignTotals(ctx, from, to, topN)
	if err != nil {
		return nil, fmt.Errorf("load campaign totals: %w", err)
	}

	var pool, weightSum float64
	weights := make([]float64, len(totals))
	for i, ct := range totals {
		pool += ct.Cost
		// ROI shifted so break-even campaigns keep a small share instead of
		// being zeroed out entirely.
		w := ct.ROI + 1
		if w < 0.1 {
			w = 0.1
		}
		weights[i] = w
		weightSum += w
	}

	allocations := make([]map[string]any, 0, len(totals))
	for i, ct := range totals {
		var proposed float64
		if weightSum > 0 {
			proposed = pool * weights[i] / weightSum
		}
		allocations = append(allocations, map[string]any{
			"campaign_id": ct.CampaignID,
			"name":        ct.Name,
			"current":     ct.Cost,
			"proposed":    proposed,
			"roi":         ct.ROI,
		})
	}

	return map[string]any{
		"allocations": allocations,
		"pool":        pool,
		"days":        days,
	}, nil
}

func (b *BudgetAllocator) FormatResults(data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["summary"] = fmt.Sprintf("Rebalanced %.2f of spend across %d campaigns",
		floatOf(data["pool"]), countOf(data["allocations"]))
	return out
}

func (b *BudgetAllocator) PrepareCharts(data map[string]any) []modules.Chart {
	items, _ := data["allocations"].([]map[string]any)
	if len(items) == 0 {
		return nil
	}
	labels := make([]string, 0, len(items))
	current := make([]float64, 0, len(items))
	proposed := make([]float64, 0, len(items))
	for _, it := range items {
		labels = append(labels, fmt.Sprint(it["name"]))
		current = append(current, floatOf(it["current"]))
		proposed = append(proposed, floatOf(it["proposed"]))
	}
	return []modules.Chart{{
		Type:   "bar",
		Title:  "Current vs proposed budget",
		Labels: labels,
		Datasets: []modules.Dataset{
			{Label: "Current", Values: current},
			{Label: "Proposed", Values: proposed},
		},
	}}
}

func (b *BudgetAllocator) Recommendations(data map[string]any) []string {
	items, _ := data["allocations"].([]map[string]any)
	var recs []string
	for _, it := range items {
		cur, prop := floatOf(it["current"]), floatOf(it["proposed"])
		if cur == 0 {
			continue
		}
		change := (prop - cur) / cur
		switch {
		case change > 0.2:
			recs = append(recs, fmt.Sprintf("Increase budget for %q by %.0f%% (ROI %.2f).",
				it["name"], change*100, floatOf(it["roi"])))
		case change < -0.2:
			recs = append(recs, fmt.Sprintf("Decrease budget for %q by %.0f%% (ROI %.2f).",
				it["name"], -change*100, floatOf(it["roi"])))
		}
	}
	if len(recs) == 0 {
		recs = []string{"Current budget split is close to the ROI-optimal allocation."}
	}
	return recs
}

func (b *BudgetAllocator) Alerts(data map[string]any) []modules.Alert {
	// Allocation proposals are advisory; nothing here is alert-worthy.
	return nil
}
