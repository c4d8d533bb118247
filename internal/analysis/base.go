// Package analysis contains the packaged analysis modules shipped with the
// dashboard. Each type implements modules.Module over the campaign store;
// the statistical load lives in Analyze, everything after it is a pure
// function of the Analyze output.
package analysis

import (
	"fmt"
	"time"

	"github.com/adpulse/adpulse/internal/modules"
)

func fptr(v float64) *float64 { return &v }

// window returns the inclusive [from, to] date strings covering the last
// days days ending today (UTC).
func window(days int) (string, string) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -(days - 1))
	return from.Format("2006-01-02"), to.Format("2006-01-02")
}

// validateConfig applies the checks shared by every packaged module:
// non-negative timeout, a parseable cron schedule and numeric parameters
// inside the bounds their ParamSpec declares.
func validateConfig(cfg modules.Config) error {
	if cfg.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	if err := modules.ValidateSchedule(cfg.Schedule); err != nil {
		return err
	}
	for name, spec := range cfg.ParamMeta {
		raw, ok := cfg.Params[name]
		if !ok {
			continue
		}
		if spec.Type != "integer" && spec.Type != "number" {
			continue
		}
		v, ok := asFloat(raw)
		if !ok {
			return fmt.Errorf("parameter %q must be numeric", name)
		}
		if spec.Min != nil && v < *spec.Min {
			return fmt.Errorf("parameter %q below minimum %v", name, *spec.Min)
		}
		if spec.Max != nil && v > *spec.Max {
			return fmt.Errorf("parameter %q above maximum %v", name, *spec.Max)
		}
	}
	return nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
