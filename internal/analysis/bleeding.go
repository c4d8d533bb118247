package analysis

import (
	"context"
	"fmt"

	"github.com/adpulse/adpulse/internal/modules"
	"github.com/adpulse/adpulse/internal/store"
)

// BleedingDetector flags campaigns that keep spending without converting.
type BleedingDetector struct {
	st *store.Store
}

// NewBleedingDetector returns the detector bound to st.
func NewBleedingDetector(st *store.Store) *BleedingDetector {
	return &BleedingDetector{st: st}
}

func (b *BleedingDetector) Metadata() modules.Metadata {
	return modules.Metadata{
		ID:              "bleeding_detector",
		Name:            "Bleeding Detector",
		Category:        "performance",
		Description:     "Finds campaigns spending money with zero conversions",
		LongDescription: "Scans the recent window for campaigns whose spend exceeds a floor while recording no conversions, so budget bleed is caught before it compounds.",
		Version:         "1.2.0",
		Priority:        90,
		Tags:            []string{"spend", "conversions"},
	}
}

func (b *BleedingDetector) DefaultConfig() modules.Config {
	return modules.Config{
		Enabled:         true,
		Schedule:        "0 * * * *",
		AlertsEnabled:   true,
		TimeoutSeconds:  30,
		CacheTTLSeconds: 1800,
		Params: map[string]any{
			"days":      7,
			"min_spend": 10.0,
		},
		ParamMeta: map[string]modules.ParamSpec{
			"days": {
				Label: "Window in days", Type: "integer",
				Min: fptr(1), Max: fptr(90), Default: 7,
			},
			"min_spend": {
				Label: "Minimum spend to flag", Type: "number",
				Min: fptr(0), Max: fptr(100000), Default: 10.0,
			},
		},
	}
}

func (b *BleedingDetector) ValidateConfig(cfg modules.Config) error {
	return validateConfig(cfg)
}

func (b *BleedingDetector) Analyze(ctx context.Context, cfg modules.Config) (map[string]any, error) {
	days := cfg.IntParam("days", 7)
	minSpend := cfg.FloatParam("min_spend", 10.0)
	from, to := window(days)

	totals, err := b.st.CampaignTotals(ctx, from, to, 500)
	if err != nil {
		return nil, fmt.Errorf("load campaign totals: %w", err)
	}

	var bleeding []map[string]any
	var wasted float64
	for _, ct := range totals {
		if ct.Cost >= minSpend && ct.Conversions == 0 {
			bleeding = append(bleeding, map[string]any{
				"campaign_id": ct.CampaignID,
				"name":        ct.Name,
				"cost":        ct.Cost,
				"clicks":      ct.Clicks,
			})
			wasted += ct.Cost
		}
	}

	return map[string]any{
		"bleeding":     bleeding,
		"checked":      len(totals),
		"total_wasted": wasted,
		"days":         days,
		"min_spend":    minSpend,
	}, nil
}

func (b *BleedingDetector) FormatResults(data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["summary"] = fmt.Sprintf("%d of %d campaigns bleeding, %.2f wasted over %v days",
		countOf(data["bleeding"]), data["checked"], floatOf(data["total_wasted"]), data["days"])
	return out
}

func (b *BleedingDetector) PrepareCharts(data map[string]any) []modules.Chart {
	items, _ := data["bleeding"].([]map[string]any)
	if len(items) == 0 {
		return nil
	}
	labels := make([]string, 0, len(items))
	values := make([]float64, 0, len(items))
	for _, it := range items {
		labels = append(labels, fmt.Sprint(it["name"]))
		values = append(values, floatOf(it["cost"]))
	}
	return []modules.Chart{{
		Type:   "bar",
		Title:  "Wasted spend by campaign",
		Labels: labels,
		Datasets: []modules.Dataset{
			{Label: "Spend without conversions", Values: values},
		},
	}}
}

func (b *BleedingDetector) Recommendations(data map[string]any) []string {
	items, _ := data["bleeding"].([]map[string]any)
	if len(items) == 0 {
		return []string{"No bleeding campaigns detected in the analyzed window."}
	}
	recs := make([]string, 0, len(items))
	for _, it := range items {
		recs = append(recs, fmt.Sprintf(
			"Pause or rework campaign %q: %.2f spent with no conversions.",
			it["name"], floatOf(it["cost"])))
	}
	return recs
}

func (b *BleedingDetector) Alerts(data map[string]any) []modules.Alert {
	wasted := floatOf(data["total_wasted"])
	count := countOf(data["bleeding"])
	if count == 0 {
		return nil
	}
	sev := "warning"
	if wasted >= criticalWaste {
		sev = "critical"
	}
	return []modules.Alert{{
		Type:     "budget_bleed",
		Severity: sev,
		Message:  fmt.Sprintf("%d campaigns spent %.2f with zero conversions", count, wasted),
		Action:   "Pause the flagged campaigns or reduce their bids",
	}}
}

// criticalWaste is the wasted-spend amount that escalates the alert.
const criticalWaste = 100.0

func (b *BleedingDetector) SeverityMetadata() map[string]modules.SeveritySpec {
	return map[string]modules.SeveritySpec{
		"budget_bleed": {
			Label: "Wasted spend",
			Thresholds: map[string]float64{
				"warning":  0,
				"critical": criticalWaste,
			},
		},
	}
}

func countOf(v any) int {
	if items, ok := v.([]map[string]any); ok {
		return len(items)
	}
	return 0
}

func floatOf(v any) float64 {
	f, _ := asFloat(v)
	return f
}
