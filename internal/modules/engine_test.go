package modules

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

// fakeModule is a configurable Module for engine tests.
type fakeModule struct {
	meta        Metadata
	cfg         Config
	validateErr error
	analyze     func(ctx context.Context, cfg Config) (map[string]any, error)
	analyzed    bool
	formatPanic bool
}

func (f *fakeModule) Metadata() Metadata {
	if f.meta.ID == "" {
		return Metadata{ID: "fake", Category: "test", Version: "1.0.0"}
	}
	return f.meta
}

func (f *fakeModule) DefaultConfig() Config {
	return f.cfg
}

func (f *fakeModule) ValidateConfig(cfg Config) error {
	return f.validateErr
}

func (f *fakeModule) Analyze(ctx context.Context, cfg Config) (map[string]any, error) {
	f.analyzed = true
	if f.analyze != nil {
		return f.analyze(ctx, cfg)
	}
	return map[string]any{"value": 42}, nil
}

func (f *fakeModule) FormatResults(data map[string]any) map[string]any {
	if f.formatPanic {
		panic("format blew up")
	}
	out := map[string]any{"formatted": true}
	for k, v := range data {
		out[k] = v
	}
	return out
}

func (f *fakeModule) PrepareCharts(data map[string]any) []Chart {
	return []Chart{{Type: "line", Title: "t"}}
}

func (f *fakeModule) Recommendations(data map[string]any) []string {
	return []string{"do the thing"}
}

func (f *fakeModule) Alerts(data map[string]any) []Alert {
	return []Alert{{Type: "test", Severity: "info", Message: "hi"}}
}

func TestEngineRun_Success(t *testing.T) {
	eng := NewEngine(nil)
	m := &fakeModule{}
	cfg := Config{TimeoutSeconds: 5, AlertsEnabled: true}

	res := eng.Run(context.Background(), m, cfg)

	if res.Status != StatusSuccess {
		t.Fatalf("status = %s, want success (error: %s)", res.Status, res.Error)
	}
	if res.Data["formatted"] != true || res.Data["value"] != 42 {
		t.Errorf("data not post-processed: %v", res.Data)
	}
	if len(res.Charts) != 1 || len(res.Recommendations) != 1 || len(res.Alerts) != 1 {
		t.Errorf("payload fields missing: %+v", res)
	}
	if res.Error != "" {
		t.Errorf("unexpected error %q", res.Error)
	}
	if res.FinishedAt.Before(res.StartedAt) {
		t.Error("finished before started")
	}
}

func TestEngineRun_AlertsGatedByConfig(t *testing.T) {
	eng := NewEngine(nil)
	res := eng.Run(context.Background(), &fakeModule{}, Config{TimeoutSeconds: 5})
	if res.Status != StatusSuccess {
		t.Fatalf("status = %s", res.Status)
	}
	if len(res.Alerts) != 0 {
		t.Errorf("alerts computed despite AlertsEnabled=false: %v", res.Alerts)
	}
}

func TestEngineRun_InvalidConfigShortCircuits(t *testing.T) {
	eng := NewEngine(nil)
	m := &fakeModule{validateErr: errors.New("days out of range")}

	res := eng.Run(context.Background(), m, Config{TimeoutSeconds: 5})

	if res.Status != StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
	if m.analyzed {
		t.Error("analyze ran despite invalid config")
	}
	if res.ElapsedMS != 0 {
		t.Errorf("elapsed = %d, want 0", res.ElapsedMS)
	}
	if !strings.Contains(res.Error, "days out of range") {
		t.Errorf("error %q does not name the cause", res.Error)
	}
}

func TestEngineRun_Timeout(t *testing.T) {
	eng := NewEngine(nil)
	m := &fakeModule{
		analyze: func(ctx context.Context, cfg Config) (map[string]any, error) {
			select {
			case <-time.After(5 * time.Second):
				return map[string]any{"late": true}, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}

	start := time.Now()
	res := eng.Run(context.Background(), m, Config{TimeoutSeconds: 1})
	elapsed := time.Since(start)

	if res.Status != StatusTimeout {
		t.Fatalf("status = %s, want timeout", res.Status)
	}
	if len(res.Data) != 0 {
		t.Errorf("data = %v, want empty", res.Data)
	}
	if res.Error == "" {
		t.Error("timeout result carries no explanation")
	}
	if elapsed > 2*time.Second {
		t.Errorf("Run blocked %v past the 1s deadline", elapsed)
	}
}

func TestEngineRun_AnalyzeError(t *testing.T) {
	eng := NewEngine(nil)
	m := &fakeModule{
		analyze: func(ctx context.Context, cfg Config) (map[string]any, error) {
			return nil, fmt.Errorf("store unavailable")
		},
	}

	res := eng.Run(context.Background(), m, Config{TimeoutSeconds: 5})
	if res.Status != StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
	if res.Error != "store unavailable" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestEngineRun_AnalyzePanicIsCaught(t *testing.T) {
	eng := NewEngine(nil)
	m := &fakeModule{
		analyze: func(ctx context.Context, cfg Config) (map[string]any, error) {
			panic("boom")
		},
	}

	res := eng.Run(context.Background(), m, Config{TimeoutSeconds: 5})
	if res.Status != StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
	if !strings.Contains(res.Error, "boom") {
		t.Errorf("error %q does not mention panic cause", res.Error)
	}
}

func TestEngineRun_PostProcessingPanicIsCaught(t *testing.T) {
	eng := NewEngine(nil)
	m := &fakeModule{formatPanic: true}

	res := eng.Run(context.Background(), m, Config{TimeoutSeconds: 5})
	if res.Status != StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}
	if !strings.Contains(res.Error, "post-processing") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestEngineRun_DefaultTimeoutApplied(t *testing.T) {
	eng := NewEngine(nil)
	res := eng.Run(context.Background(), &fakeModule{}, Config{})
	if res.Status != StatusSuccess {
		t.Fatalf("zero timeout should fall back to default, got %s: %s", res.Status, res.Error)
	}
}
