package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/adpulse/adpulse/internal/modules"
)

func TestBleedingDetector_FlagsZeroConversionSpenders(t *testing.T) {
	det := NewBleedingDetector(seedStore(t))
	data, err := det.Analyze(context.Background(), det.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	bleeding, _ := data["bleeding"].([]map[string]any)
	if len(bleeding) != 1 {
		t.Fatalf("flagged %d campaigns, want 1: %v", len(bleeding), bleeding)
	}
	if bleeding[0]["campaign_id"] != "bleed" {
		t.Errorf("flagged %v, want bleed", bleeding[0]["campaign_id"])
	}
	// 3 days at 50 each.
	if data["total_wasted"] != 150.0 {
		t.Errorf("total_wasted = %v, want 150", data["total_wasted"])
	}
	if data["checked"] != 3 {
		t.Errorf("checked = %v, want 3", data["checked"])
	}
}

func TestBleedingDetector_MinSpendOverride(t *testing.T) {
	det := NewBleedingDetector(seedStore(t))
	cfg := det.DefaultConfig().WithParams(map[string]any{"min_spend": 1.0})

	data, err := det.Analyze(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	bleeding, _ := data["bleeding"].([]map[string]any)
	// The tiny spender crosses the lowered floor too.
	if len(bleeding) != 2 {
		t.Errorf("flagged %d campaigns, want 2", len(bleeding))
	}
}

func TestBleedingDetector_PostProcessing(t *testing.T) {
	det := NewBleedingDetector(seedStore(t))
	data, err := det.Analyze(context.Background(), det.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	formatted := det.FormatResults(data)
	summary, _ := formatted["summary"].(string)
	if !strings.Contains(summary, "1 of 3") {
		t.Errorf("summary = %q", summary)
	}

	charts := det.PrepareCharts(data)
	if len(charts) != 1 || charts[0].Type != "bar" {
		t.Fatalf("charts = %+v", charts)
	}
	if len(charts[0].Labels) != 1 || charts[0].Labels[0] != "Bleeder" {
		t.Errorf("chart labels = %v", charts[0].Labels)
	}

	recs := det.Recommendations(data)
	if len(recs) != 1 || !strings.Contains(recs[0], "Bleeder") {
		t.Errorf("recommendations = %v", recs)
	}
}

func TestBleedingDetector_AlertSeverityEscalates(t *testing.T) {
	det := NewBleedingDetector(seedStore(t))

	alerts := det.Alerts(map[string]any{
		"bleeding":     []map[string]any{{"campaign_id": "x"}},
		"total_wasted": 50.0,
	})
	if len(alerts) != 1 || alerts[0].Severity != "warning" {
		t.Fatalf("alerts = %+v", alerts)
	}

	alerts = det.Alerts(map[string]any{
		"bleeding":     []map[string]any{{"campaign_id": "x"}},
		"total_wasted": criticalWaste,
	})
	if alerts[0].Severity != "critical" {
		t.Errorf("severity = %s, want critical", alerts[0].Severity)
	}

	if alerts := det.Alerts(map[string]any{"bleeding": []map[string]any{}}); alerts != nil {
		t.Errorf("no-findings alerts = %+v", alerts)
	}
}

func TestBleedingDetector_RunsThroughEngine(t *testing.T) {
	det := NewBleedingDetector(seedStore(t))
	eng := modules.NewEngine(nil)

	res := eng.Run(context.Background(), det, det.DefaultConfig())
	if res.Status != modules.StatusSuccess {
		t.Fatalf("status = %s: %s", res.Status, res.Error)
	}
	if res.Data["summary"] == nil {
		t.Error("formatted summary missing from result data")
	}
	if len(res.Alerts) != 1 || res.Alerts[0].Severity != "critical" {
		t.Errorf("alerts = %+v", res.Alerts)
	}
}
