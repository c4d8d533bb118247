// Package modules defines the contract every analysis module implements,
// the registry that catalogs live module instances, and the execution
// engine that runs a module under a wall-clock timeout.
package modules

import (
	"context"
	"time"
)

// Module is the capability set every analysis module exposes. Analyze is the
// only method allowed to fail or block; the post-processing methods are pure
// functions of its output so the engine can time-box Analyze alone.
type Module interface {
	// Metadata returns the immutable identity of the module.
	Metadata() Metadata

	// DefaultConfig returns the module's default run configuration.
	// Callers must not mutate the returned maps; use Config.WithParams.
	DefaultConfig() Config

	// ValidateConfig reports whether cfg is usable for Analyze.
	ValidateConfig(cfg Config) error

	// Analyze performs the analysis. It must honor ctx cancellation and close
	// any resources it opens via defer, since its result may be discarded
	// after a timeout.
	Analyze(ctx context.Context, cfg Config) (map[string]any, error)

	// FormatResults shapes the raw Analyze output for presentation.
	FormatResults(data map[string]any) map[string]any

	// PrepareCharts derives chart descriptors from the Analyze output.
	PrepareCharts(data map[string]any) []Chart

	// Recommendations derives human-readable recommendations.
	Recommendations(data map[string]any) []string

	// Alerts derives alert objects. Only called when cfg.AlertsEnabled.
	Alerts(data map[string]any) []Alert
}

// SeverityDescriber is an optional interface for modules that expose their
// tunable severity thresholds for UI and agent consumption.
type SeverityDescriber interface {
	SeverityMetadata() map[string]SeveritySpec
}

// Metadata identifies a module. Version participates in cache identity:
// bumping it invalidates every cached result for the module.
type Metadata struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	LongDescription string   `json:"long_description,omitempty"`
	Version         string   `json:"version"`
	Priority        int      `json:"priority"`
	Tags            []string `json:"tags,omitempty"`
}

// ParamSpec describes one tunable parameter for UI and tool-schema
// generation. Min/Max are nil for unbounded or non-numeric parameters.
type ParamSpec struct {
	Label   string   `json:"label"`
	Type    string   `json:"type"` // "integer", "number", "string", "boolean"
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Default any      `json:"default,omitempty"`
}

// SeveritySpec describes a severity threshold group.
type SeveritySpec struct {
	Label      string             `json:"label"`
	Thresholds map[string]float64 `json:"thresholds"`
}

// Config is a module run configuration. The stored default is never mutated
// per invocation; callers overlay parameters with WithParams.
type Config struct {
	Enabled         bool                 `json:"enabled"`
	Schedule        string               `json:"schedule,omitempty"` // cron expression, empty = on demand only
	AlertsEnabled   bool                 `json:"alerts_enabled"`
	TimeoutSeconds  int                  `json:"timeout_seconds"`
	CacheTTLSeconds int                  `json:"cache_ttl_seconds"`
	Params          map[string]any       `json:"params,omitempty"`
	ParamMeta       map[string]ParamSpec `json:"param_meta,omitempty"`
}

// WithParams returns a copy of c with overrides merged over c.Params.
// The receiver's maps are left untouched.
func (c Config) WithParams(overrides map[string]any) Config {
	merged := make(map[string]any, len(c.Params)+len(overrides))
	for k, v := range c.Params {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	c.Params = merged
	return c
}

// IntParam reads an integer parameter, tolerating the float64 values that
// JSON-decoded tool arguments produce. Falls back to def when absent or of
// the wrong type.
func (c Config) IntParam(name string, def int) int {
	switch v := c.Params[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// FloatParam reads a float parameter with a default.
func (c Config) FloatParam(name string, def float64) float64 {
	switch v := c.Params[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return def
	}
}

// Status classifies the outcome of one module execution.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// Chart describes one renderable chart derived from module output.
type Chart struct {
	Type     string    `json:"type"` // "line", "bar", "pie"
	Title    string    `json:"title"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one labeled series within a Chart.
type Dataset struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// Alert is an actionable condition detected by a module.
type Alert struct {
	Type     string `json:"type"`
	Severity string `json:"severity"` // "info", "warning", "critical"
	Message  string `json:"message"`
	Action   string `json:"action,omitempty"`
}

// Result is the outcome of one module execution. Exactly one of
// {Data, Error} carries meaning depending on Status; on timeout Data is an
// empty map and Error explains the deadline.
type Result struct {
	RunID           string         `json:"run_id"`
	ModuleID        string         `json:"module_id"`
	Status          Status         `json:"status"`
	StartedAt       time.Time      `json:"started_at"`
	FinishedAt      time.Time      `json:"finished_at"`
	ElapsedMS       int64          `json:"elapsed_ms"`
	Data            map[string]any `json:"data"`
	Charts          []Chart        `json:"charts,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
	Alerts          []Alert        `json:"alerts,omitempty"`
	Error           string         `json:"error,omitempty"`
}
