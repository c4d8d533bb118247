package modules

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var scheduleParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a Config.Schedule cron expression. An empty
// schedule means on-demand only and is valid.
func ValidateSchedule(spec string) error {
	if spec == "" {
		return nil
	}
	if _, err := scheduleParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Service is the module invocation boundary: it resolves a module id,
// overlays caller-supplied parameters on the stored default config and runs
// the module through the engine. Both the HTTP layer and the agent call it.
type Service struct {
	reg *Registry
	eng *Engine
	log *zap.Logger
}

// NewService wires a registry and engine together.
func NewService(reg *Registry, eng *Engine, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{reg: reg, eng: eng, log: log}
}

// Registry exposes the underlying catalog for listing endpoints.
func (s *Service) Registry() *Registry {
	return s.reg
}

// Run executes the module registered under id with overrides merged over
// its default parameters. The stored default config is never mutated. An
// unknown id is the only error surfaced to the caller; execution failures
// are folded into the Result.
func (s *Service) Run(ctx context.Context, id string, overrides map[string]any) (Result, error) {
	m, ok := s.reg.Get(id)
	if !ok {
		return Result{}, fmt.Errorf("unknown module %q", id)
	}

	cfg := m.DefaultConfig().WithParams(overrides)
	meta := m.Metadata()
	key := CacheKey(meta.ID, meta.Version, cfg.Params)
	s.log.Debug("running module",
		zap.String("module", meta.ID),
		zap.String("cache_key", key))

	res := s.eng.Run(ctx, m, cfg)
	s.log.Info("module finished",
		zap.String("module", meta.ID),
		zap.String("status", string(res.Status)),
		zap.Int64("elapsed_ms", res.ElapsedMS))
	return res, nil
}
