package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/adpulse/adpulse/internal/modules"
	"github.com/adpulse/adpulse/internal/store"
)

// OfferCluster groups offers whose ROI sits within a similarity band, so
// under- and over-performing offer families stand out together.
type OfferCluster struct {
	st *store.Store
}

func NewOfferCluster(st *store.Store) *OfferCluster {
	return &OfferCluster{st: st}
}

func (o *OfferCluster) Metadata() modules.Metadata {
	return modules.Metadata{
		ID:          "offer_cluster",
		Name:        "Offer Cluster",
		Category:    "quality",
		Description: "Groups offers into ROI bands to surface similar performers",
		Version:     "0.9.0",
		Priority:    40,
		Tags:        []string{"offers", "clustering"},
	}
}

func (o *OfferCluster) DefaultConfig() modules.Config {
	return modules.Config{
		Enabled:         true,
		AlertsEnabled:   false,
		TimeoutSeconds:  30,
		CacheTTLSeconds: 7200,
		Params: map[string]any{
			"days":      30,
			"band_size": 0.25,
		},
		ParamMeta: map[string]modules.ParamSpec{
			"days": {
				Label: "Window in days", Type: "integer",
				Min: fptr(7), Max: fptr(90), Default: 30,
			},
			"band_size": {
				Label: "ROI band width", Type: "number",
				Min: fptr(0.05), Max: fptr(1), Default: 0.25,
			},
		},
	}
}

func (o *OfferCluster) ValidateConfig(cfg modules.Config) error {
	return validateConfig(cfg)
}

func (o *OfferCluster) Analyze(ctx context.Context, cfg modules.Config) (map[string]any, error) {
	days := cfg.IntParam("days", 30)
	band := cfg.FloatParam("band_size", 0.25)
	from, to := window(days)

	groups, err := o.st.TotalsByDimension(ctx, store.DimOffer, from, to, 500)
	if err != nil {
		return nil, fmt.Errorf("load offer totals: %w", err)
	}

	clusters := make(map[string][]map[string]any)
	for _, g := range groups {
		if g.Key == "" || g.Cost == 0 {
			continue
		}
		bucket := math.Floor(g.ROI / band)
		label := fmt.Sprintf("roi %.2f to %.2f", bucket*band, (bucket+1)*band)
		clusters[label] = append(clusters[label], map[string]any{
			"offer":     g.Key,
			"campaigns": g.Campaigns,
			"cost":      g.Cost,
			"roi":       g.ROI,
		})
	}

	return map[string]any{
		"clusters":  clusters,
		"offers":    len(groups),
		"days":      days,
		"band_size": band,
	}, nil
}

func (o *OfferCluster) FormatResults(data map[string]any) map[string]any {
	out := make(map[string]any, len(data)+1)
	for k, v := range data {
		out[k] = v
	}
	clusters, _ := data["clusters"].(map[string][]map[string]any)
	out["summary"] = fmt.Sprintf("%v offers fall into %d ROI bands", data["offers"], len(clusters))
	return out
}

func (o *OfferCluster) PrepareCharts(data map[string]any) []modules.Chart {
	clusters, _ := data["clusters"].(map[string][]map[string]any)
	if len(clusters) == 0 {
		return nil
	}
	labels := make([]string, 0, len(clusters))
	for label := range clusters {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	values := make([]float64, 0, len(labels))
	for _, label := range labels {
		values = append(values, float64(len(clusters[label])))
	}
	return []modules.Chart{{
		Type:   "pie",
		Title:  "Offers per ROI band",
		Labels: labels,
		Datasets: []modules.Dataset{
			{Label: "Offers", Values: values},
		},
	}}
}

func (o *OfferCluster) Recommendations(data map[string]any) []string {
	clusters, _ := data["clusters"].(map[string][]map[string]any)
	var worst []map[string]any
	for _, members := range clusters {
		for _, m := range members {
			if floatOf(m["roi"]) < 0 {
				worst = append(worst, m)
			}
		}
	}
	if len(worst) == 0 {
		return []string{"No offer band is losing money over the analyzed window."}
	}
	recs := make([]string, 0, len(worst))
	for _, m := range worst {
		recs = append(recs, fmt.Sprintf(
			"Offer %q is negative ROI (%.2f) across %v campaigns; renegotiate payout or drop it.",
			m["offer"], floatOf(m["roi"]), m["campaigns"]))
	}
	return recs
}

func (o *OfferCluster) Alerts(data map[string]any) []modules.Alert {
	return nil
}
