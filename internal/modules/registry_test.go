package modules

import (
	"context"
	"testing"
)

// metaOnly is a minimal module for registry tests.
type metaOnly struct {
	meta Metadata
}

func (m *metaOnly) Metadata() Metadata                     { return m.meta }
func (m *metaOnly) DefaultConfig() Config                  { return Config{} }
func (m *metaOnly) ValidateConfig(Config) error            { return nil }
func (m *metaOnly) FormatResults(d map[string]any) map[string]any { return d }
func (m *metaOnly) PrepareCharts(map[string]any) []Chart   { return nil }
func (m *metaOnly) Recommendations(map[string]any) []string { return nil }
func (m *metaOnly) Alerts(map[string]any) []Alert          { return nil }
func (m *metaOnly) Analyze(context.Context, Config) (map[string]any, error) {
	return map[string]any{}, nil
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	mods := []Metadata{
		{ID: "alpha", Category: "performance", Priority: 10},
		{ID: "beta", Category: "performance", Priority: 90},
		{ID: "gamma", Category: "quality", Priority: 50},
	}
	for _, meta := range mods {
		if err := reg.Register(&metaOnly{meta: meta}); err != nil {
			t.Fatalf("register %s: %v", meta.ID, err)
		}
	}
	return reg
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := newTestRegistry(t)
	err := reg.Register(&metaOnly{meta: Metadata{ID: "alpha", Category: "x"}})
	if err == nil {
		t.Fatal("duplicate registration accepted")
	}
}

func TestRegistry_RejectsEmptyID(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(&metaOnly{}); err == nil {
		t.Fatal("empty id accepted")
	}
}

func TestRegistry_ByCategoryOrdering(t *testing.T) {
	reg := newTestRegistry(t)

	perf := reg.ByCategory("performance")
	if len(perf) != 2 {
		t.Fatalf("got %d performance modules, want 2", len(perf))
	}
	// Higher priority first.
	if perf[0].Metadata().ID != "beta" || perf[1].Metadata().ID != "alpha" {
		t.Errorf("order = %s, %s", perf[0].Metadata().ID, perf[1].Metadata().ID)
	}
}

func TestRegistry_UniversalReturnsAll(t *testing.T) {
	reg := newTestRegistry(t)
	all := reg.ByCategory(CategoryUniversal)
	if len(all) != 3 {
		t.Fatalf("universal returned %d modules, want 3", len(all))
	}
}

func TestRegistry_Categories(t *testing.T) {
	reg := newTestRegistry(t)
	cats := reg.Categories()
	want := []string{"performance", "quality"}
	if len(cats) != len(want) {
		t.Fatalf("categories = %v", cats)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("categories = %v, want %v", cats, want)
		}
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := newTestRegistry(t)
	if _, ok := reg.Get("nope"); ok {
		t.Error("unknown id resolved")
	}
}
