// Package dataquery exposes the fixed set of read-only aggregation queries
// the agent can call when no packaged analysis module fits. Every query
// clamps its limit and date range and returns a uniform envelope; internal
// failures become an error envelope rather than a raised error, because a
// panic or error here would abort the whole conversation turn.
package dataquery

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/adpulse/adpulse/internal/store"
)

// Tool names, referenced by the agent's static tool descriptors.
const (
	ToolListCampaigns    = "list_campaigns"
	ToolCampaignDaily    = "campaign_daily_stats"
	ToolAggregateStats   = "aggregate_stats"
	ToolByTrafficSource  = "stats_by_traffic_source"
	ToolByNetwork        = "stats_by_network"
	ToolByOffer          = "stats_by_offer"
)

// Service runs the data-query tools against the campaign store.
type Service struct {
	st  *store.Store
	log *zap.Logger
}

// NewService returns a query service over st.
func NewService(st *store.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{st: st, log: log}
}

// Args is the union of parameters the query tools accept. Every field is
// optional; zero values are clamped or defaulted.
type Args struct {
	CampaignID string `json:"campaign_id,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// Invoke dispatches one query tool by name with JSON-encoded arguments.
// The returned map is always a well-formed envelope; it never raises.
func (s *Service) Invoke(ctx context.Context, name string, argsJSON string) map[string]any {
	var args Args
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
			return errEnvelope(fmt.Errorf("parse arguments: %w", err))
		}
	}

	switch name {
	case ToolListCampaigns:
		return s.ListCampaigns(ctx, args)
	case ToolCampaignDaily:
		return s.CampaignDailyStats(ctx, args)
	case ToolAggregateStats:
		return s.AggregateStats(ctx, args)
	case ToolByTrafficSource:
		return s.statsByDimension(ctx, store.DimTrafficSource, args)
	case ToolByNetwork:
		return s.statsByDimension(ctx, store.DimNetwork, args)
	case ToolByOffer:
		return s.statsByDimension(ctx, store.DimOffer, args)
	default:
		return errEnvelope(fmt.Errorf("unknown query tool %q", name))
	}
}

// ListCampaigns returns up to the clamped limit of tracked campaigns.
func (s *Service) ListCampaigns(ctx context.Context, args Args) map[string]any {
	limit := clampLimit(args.Limit)
	campaigns, err := s.st.ListCampaigns(ctx, limit)
	if err != nil {
		s.log.Warn("list_campaigns failed", zap.Error(err))
		return errEnvelope(err)
	}
	return envelope(campaigns, len(campaigns), limit, "", "")
}

// CampaignDailyStats returns the per-day series for one campaign.
func (s *Service) CampaignDailyStats(ctx context.Context, args Args) map[string]any {
	if args.CampaignID == "" {
		return errEnvelope(fmt.Errorf("campaign_id is required"))
	}
	limit := clampLimit(args.Limit)
	from, to := clampRange(args.From, args.To)
	stats, err := s.st.DailyStats(ctx, args.CampaignID, from, to, limit)
	if err != nil {
		s.log.Warn("campaign_daily_stats failed",
			zap.String("campaign", args.CampaignID), zap.Error(err))
		return errEnvelope(err)
	}
	return envelope(stats, len(stats), limit, from, to)
}

// AggregateStats returns cross-campaign totals plus a per-campaign
// breakdown for the clamped period.
func (s *Service) AggregateStats(ctx context.Context, args Args) map[string]any {
	limit := clampLimit(args.Limit)
	from, to := clampRange(args.From, args.To)

	totals, err := s.st.Totals(ctx, from, to)
	if err != nil {
		s.log.Warn("aggregate_stats failed", zap.Error(err))
		return errEnvelope(err)
	}
	perCampaign, err := s.st.CampaignTotals(ctx, from, to, limit)
	if err != nil {
		s.log.Warn("aggregate_stats breakdown failed", zap.Error(err))
		return errEnvelope(err)
	}

	env := envelope(perCampaign, len(perCampaign), limit, from, to)
	env["totals"] = totals
	return env
}

func (s *Service) statsByDimension(ctx context.Context, dim store.Dimension, args Args) map[string]any {
	limit := clampLimit(args.Limit)
	from, to := clampRange(args.From, args.To)
	groups, err := s.st.TotalsByDimension(ctx, dim, from, to, limit)
	if err != nil {
		s.log.Warn("dimension stats failed", zap.String("dimension", string(dim)), zap.Error(err))
		return errEnvelope(err)
	}
	return envelope(groups, len(groups), limit, from, to)
}

// envelope builds the uniform success payload. The effective limit and
// period are echoed so the caller can detect truncation and clamping.
func envelope(records any, count, limit int, from, to string) map[string]any {
	env := map[string]any{
		"records":        records,
		"total_returned": count,
		"limit_applied":  limit,
	}
	if from != "" {
		env["period"] = map[string]string{"from": from, "to": to}
	}
	return env
}

func errEnvelope(err error) map[string]any {
	return map[string]any{
		"error":          err.Error(),
		"records":        []any{},
		"total_returned": 0,
	}
}
