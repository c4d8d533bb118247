package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/adpulse/adpulse/internal/modules"
	"github.com/adpulse/adpulse/internal/store"
)

// backfillDays is how far each poll reaches back, so late tracker
// corrections are picked up.
const backfillDays = 7

// runTimeout bounds one scheduled collection or module run.
const runTimeout = 5 * time.Minute

// Collector owns the cron scheduler: tracker polling plus per-module
// schedules.
type Collector struct {
	client *Client
	st     *store.Store
	log    *zap.Logger
	cron   *cron.Cron
}

// New returns a collector writing into st. client may be nil when no
// tracker is configured; only module schedules run then.
func New(client *Client, st *store.Store, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		client: client,
		st:     st,
		log:    log,
		cron:   cron.New(),
	}
}

// RunOnce performs one full collection pass: campaign list, then the
// recent daily stats for each campaign.
func (c *Collector) RunOnce(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("no tracker configured")
	}

	campaigns, err := c.client.FetchCampaigns(ctx)
	if err != nil {
		return err
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -(backfillDays - 1))
	fromStr, toStr := from.Format("2006-01-02"), to.Format("2006-01-02")

	var statRows int
	for _, camp := range campaigns {
		if err := c.st.UpsertCampaign(ctx, camp); err != nil {
			return err
		}
		stats, err := c.client.FetchDailyStats(ctx, camp.ID, fromStr, toStr)
		if err != nil {
			// One campaign failing should not lose the rest of the pass.
			c.log.Warn("stats fetch failed",
				zap.String("campaign", camp.ID), zap.Error(err))
			continue
		}
		for _, ds := range stats {
			if err := c.st.UpsertDailyStat(ctx, ds); err != nil {
				return err
			}
			statRows++
		}
	}

	c.log.Info("collection pass finished",
		zap.Int("campaigns", len(campaigns)), zap.Int("stat_rows", statRows))
	return nil
}

// SchedulePolling registers the tracker poll every pollMinutes.
func (c *Collector) SchedulePolling(pollMinutes int) error {
	if c.client == nil {
		return fmt.Errorf("no tracker configured")
	}
	spec := fmt.Sprintf("@every %dm", pollMinutes)
	_, err := c.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if err := c.RunOnce(ctx); err != nil {
			c.log.Warn("scheduled collection failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule polling: %w", err)
	}
	return nil
}

// ScheduleModules registers every enabled module that carries a cron
// schedule, running it through svc so results get the same classification
// as on-demand runs.
func (c *Collector) ScheduleModules(svc *modules.Service) error {
	for _, m := range svc.Registry().All() {
		cfg := m.DefaultConfig()
		if !cfg.Enabled || cfg.Schedule == "" {
			continue
		}
		id := m.Metadata().ID
		_, err := c.cron.AddFunc(cfg.Schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
			defer cancel()
			res, err := svc.Run(ctx, id, nil)
			if err != nil {
				c.log.Warn("scheduled module run failed",
					zap.String("module", id), zap.Error(err))
				return
			}
			c.log.Info("scheduled module run",
				zap.String("module", id), zap.String("status", string(res.Status)))
		})
		if err != nil {
			return fmt.Errorf("schedule module %s: %w", id, err)
		}
	}
	return nil
}

// Start launches the cron scheduler.
func (c *Collector) Start() {
	c.cron.Start()
}

// Stop stops the scheduler and waits for running jobs to finish.
func (c *Collector) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}
