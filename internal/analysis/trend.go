package analysis

import (
	"context"
	"fmt"

	"github.com/adpulse/adpulse/internal/modules"
	"github.com/adpulse/adpulse/internal/store"
)

// ROITrend fits a least-squares line through the daily ROI series and
// reports the direction of travel.
type ROITrend struct {
	st *store.Store
}

func NewROITrend(st *store.Store) *ROITrend {
	return &ROITrend{st: st}
}

func (r *ROITrend) Metadata() modules.Metadata {
	return modules.Metadata{
		ID:          "roi_trend",
		Name:        "ROI Trend",
		Category:    "performance",
		Description: "Fits a regression line through daily ROI to spot drift",
		Version:     "1.0.1",
		Priority:    70,
		Tags:        []string{"roi", "trend"},
	}
}

func (r *ROITrend) DefaultConfig() modules.Config {
	return modules.Config{
		Enabled:         true,
		AlertsEnabled:   true,
		TimeoutSeconds:  30,
		CacheTTLSeconds: 3600,
		Params: map[string]any{
			"days": 14,
		},
		ParamMeta: map[string]modules.ParamSpec{
			"days": {
				Label: "Window in days", Type: "integer",
				Min: fptr(2), Max: fptr(90), Default: 14,
			},
		},
	}
}

func (r *ROITrend) ValidateConfig(cfg modules.Config) error {
	return validateConfig(cfg)
}

func (r *ROITrend) Analyze(ctx context.Context, cfg modules.Config) (map[string]any, error) {
	days := cfg.IntParam("days", 14)
	from, to := window(days)

	series, err := r.st.DailyTotals(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load daily totals: %w", err)
	}
	if len(series) < 2 {
		return map[string]any{
			"days": days, "points": len(series),
			"slope": 0.0, "direction": "flat", "series": []map[string]any{},
		}, nil
	}

	// Least-squares slope over (day index, roi).
	var sumX, sumY, sumXY, sumXX float64
	points := make([]map[string]any, 0, len(series))
	for i, day := range series {
		x, y := float64(i), day.ROI
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
		points = append(points, map[string]any{"date": day.Date, "roi": day.ROI})
	}
	n := float64(len(series))
	denom := n*sumXX - sumX*sumX
	var slope float64
	if denom != 0 {
		slope = (n*sumXY - sumX*sumY) / denom
	}

	direction := "flat"
	switch {
	case slope > flatSlope:
		direction = "improving"
	case slope < -flatSlope:
		direction = "declining"
	}

	return map[string]any{
		"days":      days,
		"points":    len(series),
		"slope":     slope,
		"direction": direction,
		"series":    points,
	}, nil
}

// flatSlope is the daily ROI change below which the trend counts as flat.
const flatSlope = 0.005

func (r *ROITrend) FormatResults(data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["summary"] = fmt.Sprintf("ROI is %v (slope %.4f/day over %v days)",
		data["direction"], floatOf(data["slope"]), data["days"])
	return out
}

func (r *ROITrend) PrepareCharts(data map[string]any) []modules.Chart {
	points, _ := data["series"].([]map[string]any)
	if len(points) == 0 {
		return nil
	}
	labels := make([]string, 0, len(points))
	values := make([]float64, 0, len(points))
	for _, p := range points {
		labels = append(labels, fmt.Sprint(p["date"]))
		values = append(values, floatOf(p["roi"]))
	}
	return []modules.Chart{{
		Type:   "line",
		Title:  "Daily ROI",
		Labels: labels,
		Datasets: []modules.Dataset{
			{Label: "ROI", Values: values},
		},
	}}
}

func (r *ROITrend) Recommendations(data map[string]any) []string {
	switch data["direction"] {
	case "declining":
		return []string{"ROI is declining; review recent traffic-source or creative changes."}
	case "improving":
		return []string{"ROI is improving; consider scaling budget gradually."}
	default:
		return []string{"ROI is stable; no action needed."}
	}
}

func (r *ROITrend) Alerts(data map[string]any) []modules.Alert {
	if data["direction"] != "declining" {
		return nil
	}
	return []modules.Alert{{
		Type:     "roi_decline",
		Severity: "warning",
		Message:  fmt.Sprintf("Daily ROI declining at %.4f per day", floatOf(data["slope"])),
		Action:   "Audit the largest spenders for rising costs or falling payouts",
	}}
}
