package modules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTimeoutSeconds bounds Analyze when a config does not set a timeout.
const DefaultTimeoutSeconds = 60

// Engine runs one module invocation with timeout enforcement and failure
// isolation. Analyze errors, panics and deadline overruns never propagate
// to the caller; they are classified into the returned Result.
type Engine struct {
	log *zap.Logger
}

// NewEngine returns an engine logging through log.
func NewEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

type analyzeOutcome struct {
	data map[string]any
	err  error
}

// Run executes m under cfg. Invalid configuration short-circuits to
// StatusError with zero elapsed time and no invocation. Analyze runs on its
// own goroutine bounded by cfg.TimeoutSeconds; if the deadline elapses the
// worker's context is cancelled and Run returns StatusTimeout without
// waiting for it. Elapsed time spans Analyze plus post-processing.
func (e *Engine) Run(ctx context.Context, m Module, cfg Config) Result {
	meta := m.Metadata()
	res := Result{RunID: uuid.NewString(), ModuleID: meta.ID}

	if err := m.ValidateConfig(cfg); err != nil {
		now := time.Now().UTC()
		res.Status = StatusError
		res.StartedAt = now
		res.FinishedAt = now
		res.Data = map[string]any{}
		res.Error = fmt.Sprintf("invalid config: %v", err)
		return res
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = DefaultTimeoutSeconds * time.Second
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res.StartedAt = time.Now().UTC()
	outc := make(chan analyzeOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				outc <- analyzeOutcome{err: fmt.Errorf("analyze panicked: %v", r)}
			}
		}()
		data, err := m.Analyze(runCtx, cfg)
		outc <- analyzeOutcome{data: data, err: err}
	}()

	select {
	case out := <-outc:
		if out.err != nil {
			e.log.Warn("module analyze failed",
				zap.String("module", meta.ID), zap.Error(out.err))
			res.Status = StatusError
			res.Data = map[string]any{}
			res.Error = out.err.Error()
		} else {
			e.finish(m, cfg, out.data, &res)
		}
	case <-runCtx.Done():
		// The worker goroutine keeps running until it observes the cancelled
		// context; its eventual result is discarded.
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			e.log.Warn("module timed out",
				zap.String("module", meta.ID), zap.Duration("timeout", timeout))
			res.Status = StatusTimeout
			res.Data = map[string]any{}
			res.Error = fmt.Sprintf("analysis exceeded the %s timeout", timeout)
		} else {
			res.Status = StatusError
			res.Data = map[string]any{}
			res.Error = fmt.Sprintf("analysis cancelled: %v", runCtx.Err())
		}
	}

	res.FinishedAt = time.Now().UTC()
	res.ElapsedMS = res.FinishedAt.Sub(res.StartedAt).Milliseconds()
	return res
}

// finish runs the post-processing steps synchronously. A panic in any of
// them downgrades the result to StatusError rather than crashing the caller.
func (e *Engine) finish(m Module, cfg Config, data map[string]any, res *Result) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("module post-processing panicked",
				zap.String("module", res.ModuleID), zap.Any("cause", r))
			*res = Result{
				RunID:     res.RunID,
				ModuleID:  res.ModuleID,
				Status:    StatusError,
				StartedAt: res.StartedAt,
				Data:      map[string]any{},
				Error:     fmt.Sprintf("post-processing panicked: %v", r),
			}
		}
	}()

	res.Status = StatusSuccess
	res.Data = m.FormatResults(data)
	if res.Data == nil {
		res.Data = map[string]any{}
	}
	res.Charts = m.PrepareCharts(data)
	res.Recommendations = m.Recommendations(data)
	if cfg.AlertsEnabled {
		res.Alerts = m.Alerts(data)
	}
}
