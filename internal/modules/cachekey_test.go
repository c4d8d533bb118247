package modules

import "testing"

func TestCacheKey_Deterministic(t *testing.T) {
	params := map[string]any{"days": 7, "min_spend": 10.0}
	k1 := CacheKey("bleeding_detector", "1.2.0", params)
	k2 := CacheKey("bleeding_detector", "1.2.0", params)
	if k1 != k2 {
		t.Errorf("same inputs produced different keys: %s vs %s", k1, k2)
	}
}

func TestCacheKey_InsensitiveToInsertionOrder(t *testing.T) {
	a := map[string]any{}
	a["days"] = 7
	a["min_spend"] = 10.0
	a["nested"] = map[string]any{"x": 1, "y": 2}

	b := map[string]any{}
	b["nested"] = map[string]any{"y": 2, "x": 1}
	b["min_spend"] = 10.0
	b["days"] = 7

	if CacheKey("m", "1.0.0", a) != CacheKey("m", "1.0.0", b) {
		t.Error("key depends on map insertion order")
	}
}

func TestCacheKey_Distinguishes(t *testing.T) {
	params := map[string]any{"days": 7}

	tests := []struct {
		name           string
		id1, v1        string
		id2, v2        string
		params2        map[string]any
	}{
		{"different version", "m", "1.0.0", "m", "1.0.1", params},
		{"different id", "m", "1.0.0", "n", "1.0.0", params},
		{"different params", "m", "1.0.0", "m", "1.0.0", map[string]any{"days": 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if CacheKey(tt.id1, tt.v1, params) == CacheKey(tt.id2, tt.v2, tt.params2) {
				t.Error("distinct invocations collided")
			}
		})
	}
}

func TestCacheKey_NilAndEmptyParamsDiffer(t *testing.T) {
	// nil marshals to "null", an empty map to "{}"; both are stable.
	k1 := CacheKey("m", "1.0.0", nil)
	k2 := CacheKey("m", "1.0.0", map[string]any{})
	if k1 == CacheKey("m", "1.0.1", nil) {
		t.Error("version ignored for nil params")
	}
	if k1 == "" || k2 == "" {
		t.Error("empty key")
	}
}
