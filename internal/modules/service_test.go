package modules

import (
	"context"
	"testing"
)

// capture records the config Analyze saw.
type capture struct {
	metaOnly
	seen Config
}

func (c *capture) DefaultConfig() Config {
	return Config{
		TimeoutSeconds: 5,
		Params:         map[string]any{"days": 7, "min_spend": 10.0},
	}
}

func (c *capture) Analyze(ctx context.Context, cfg Config) (map[string]any, error) {
	c.seen = cfg
	return map[string]any{}, nil
}

func TestServiceRun_UnknownModule(t *testing.T) {
	svc := NewService(NewRegistry(), NewEngine(nil), nil)
	if _, err := svc.Run(context.Background(), "missing", nil); err == nil {
		t.Fatal("unknown module did not error")
	}
}

func TestServiceRun_MergesOverridesWithoutMutatingDefaults(t *testing.T) {
	reg := NewRegistry()
	mod := &capture{metaOnly: metaOnly{meta: Metadata{ID: "cap", Category: "test", Version: "1"}}}
	if err := reg.Register(mod); err != nil {
		t.Fatal(err)
	}
	svc := NewService(reg, NewEngine(nil), nil)

	res, err := svc.Run(context.Background(), "cap", map[string]any{"days": 30})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusSuccess {
		t.Fatalf("status = %s: %s", res.Status, res.Error)
	}

	if mod.seen.Params["days"] != 30 {
		t.Errorf("override not applied: %v", mod.seen.Params)
	}
	if mod.seen.Params["min_spend"] != 10.0 {
		t.Errorf("default lost in merge: %v", mod.seen.Params)
	}
	if mod.DefaultConfig().Params["days"] != 7 {
		t.Error("stored default mutated by override")
	}
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"", false},
		{"0 * * * *", false},
		{"*/15 * * * *", false},
		{"not a cron line", true},
		{"61 * * * *", true},
	}
	for _, tt := range tests {
		err := ValidateSchedule(tt.spec)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSchedule(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
		}
	}
}
