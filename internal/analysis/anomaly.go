package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/adpulse/adpulse/internal/modules"
	"github.com/adpulse/adpulse/internal/store"
)

// AnomalyDetector flags campaigns whose most recent day of click volume
// deviates from their own baseline by more than a z-score threshold.
type AnomalyDetector struct {
	st *store.Store
}

func NewAnomalyDetector(st *store.Store) *AnomalyDetector {
	return &AnomalyDetector{st: st}
}

func (a *AnomalyDetector) Metadata() modules.Metadata {
	return modules.Metadata{
		ID:          "anomaly_detector",
		Name:        "Anomaly Detector",
		Category:    "quality",
		Description: "Flags campaigns whose latest traffic deviates from their baseline",
		Version:     "1.1.0",
		Priority:    60,
		Tags:        []string{"traffic", "outliers"},
	}
}

func (a *AnomalyDetector) DefaultConfig() modules.Config {
	return modules.Config{
		Enabled:         true,
		AlertsEnabled:   true,
		TimeoutSeconds:  45,
		CacheTTLSeconds: 3600,
		Params: map[string]any{
			"days":        14,
			"z_threshold": 2.0,
		},
		ParamMeta: map[string]modules.ParamSpec{
			"days": {
				Label: "Baseline window in days", Type: "integer",
				Min: fptr(3), Max: fptr(90), Default: 14,
			},
			"z_threshold": {
				Label: "Z-score threshold", Type: "number",
				Min: fptr(0.5), Max: fptr(5), Default: 2.0,
			},
		},
	}
}

func (a *AnomalyDetector) ValidateConfig(cfg modules.Config) error {
	return validateConfig(cfg)
}

func (a *AnomalyDetector) Analyze(ctx context.Context, cfg modules.Config) (map[string]any, error) {
	days := cfg.IntParam("days", 14)
	threshold := cfg.FloatParam("z_threshold", 2.0)
	from, to := window(days)

	campaigns, err := a.st.ListCampaigns(ctx, 500)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}

	var anomalies []map[string]any
	checked := 0
	for _, c := range campaigns {
		stats, err := a.st.DailyStats(ctx, c.ID, from, to, days)
		if err != nil {
			return nil, fmt.Errorf("daily stats for %s: %w", c.ID, err)
		}
		if len(stats) < 3 {
			continue
		}
		checked++

		baseline := stats[:len(stats)-1]
		latest := stats[len(stats)-1]
		mean, stddev := meanStddev(baseline)
		if stddev == 0 {
			continue
		}
		z := (float64(latest.Clicks) - mean) / stddev
		if math.Abs(z) >= threshold {
			anomalies = append(anomalies, map[string]any{
				"campaign_id": c.ID,
				"name":        c.Name,
				"date":        latest.Date,
				"clicks":      latest.Clicks,
				"baseline":    mean,
				"z_score":     z,
			})
		}
	}

	return map[string]any{
		"anomalies":   anomalies,
		"checked":     checked,
		"days":        days,
		"z_threshold": threshold,
	}, nil
}

func meanStddev(stats []store.DailyStat) (float64, float64) {
	n := float64(len(stats))
	var sum float64
	for _, s := range stats {
		sum += float64(s.Clicks)
	}
	mean := sum / n
	var sq float64
	for _, s := range stats {
		d := float64(s.Clicks) - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / n)
}

func (a *AnomalyDetector) FormatResults(data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	out["summary"] = fmt.Sprintf("%d anomalies across %v campaigns",
		countOf(data["anomalies"]), data["checked"])
	return out
}

func (a *AnomalyDetector) PrepareCharts(data map[string]any) []modules.Chart {
	items, _ := data["anomalies"].([]map[string]any)
	if len(items) == 0 {
		return nil
	}
	labels := make([]string, 0, len(items))
	values := make([]float64, 0, len(items))
	for _, it := range items {
		labels = append(labels, fmt.Sprint(it["name"]))
		values = append(values, floatOf(it["z_score"]))
	}
	return []modules.Chart{{
		Type:   "bar",
		Title:  "Latest-day click deviation (z-score)",
		Labels: labels,
		Datasets: []modules.Dataset{
			{Label: "Z-score", Values: values},
		},
	}}
}

func (a *AnomalyDetector) Recommendations(data map[string]any) []string {
	items, _ := data["anomalies"].([]map[string]any)
	if len(items) == 0 {
		return []string{"No traffic anomalies detected."}
	}
	recs := make([]string, 0, len(items))
	for _, it := range items {
		z := floatOf(it["z_score"])
		verb := "spiked"
		if z < 0 {
			verb = "dropped"
		}
		recs = append(recs, fmt.Sprintf(
			"Campaign %q %s on %v (z-score %.1f); verify tracking and source quality.",
			it["name"], verb, it["date"], z))
	}
	return recs
}

func (a *AnomalyDetector) Alerts(data map[string]any) []modules.Alert {
	items, _ := data["anomalies"].([]map[string]any)
	var alerts []modules.Alert
	for _, it := range items {
		z := floatOf(it["z_score"])
		sev := "info"
		if math.Abs(z) >= 3 {
			sev = "warning"
		}
		alerts = append(alerts, modules.Alert{
			Type:     "traffic_anomaly",
			Severity: sev,
			Message: fmt.Sprintf("Campaign %q clicks at z-score %.1f on %v",
				it["name"], z, it["date"]),
			Action: "Check the traffic source for bot activity or delivery changes",
		})
	}
	return alerts
}

func (a *AnomalyDetector) SeverityMetadata() map[string]modules.SeveritySpec {
	return map[string]modules.SeveritySpec{
		"traffic_anomaly": {
			Label: "Absolute z-score",
			Thresholds: map[string]float64{
				"info":    2,
				"warning": 3,
			},
		},
	}
}
