// Package store persists campaign and daily-stat records in SQLite and
// exposes the read-only aggregations consumed by the analysis modules and
// the agent's data-query tools.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed campaign store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the campaign database at basePath/campaigns.db.
// Pass ":memory:" for an in-memory database, used by tests.
func Open(basePath string) (*Store, error) {
	var dbPath string
	if basePath == ":memory:" {
		dbPath = ":memory:"
	} else {
		if err := os.MkdirAll(basePath, 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		dbPath = filepath.Join(basePath, "campaigns.db")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS campaigns (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		traffic_source TEXT NOT NULL DEFAULT '',
		network TEXT NOT NULL DEFAULT '',
		offer TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS daily_stats (
		campaign_id TEXT NOT NULL,
		date TEXT NOT NULL,
		clicks INTEGER NOT NULL DEFAULT 0,
		conversions INTEGER NOT NULL DEFAULT 0,
		cost REAL NOT NULL DEFAULT 0,
		revenue REAL NOT NULL DEFAULT 0,
		PRIMARY KEY (campaign_id, date),
		FOREIGN KEY (campaign_id) REFERENCES campaigns(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_daily_stats_date ON daily_stats(date);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertCampaign inserts or updates a campaign record.
func (s *Store) UpsertCampaign(ctx context.Context, c Campaign) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name, traffic_source, network, offer, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			traffic_source = excluded.traffic_source,
			network = excluded.network,
			offer = excluded.offer,
			status = excluded.status`,
		c.ID, c.Name, c.TrafficSource, c.Network, c.Offer, c.Status,
		c.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"))
	if err != nil {
		return fmt.Errorf("upsert campaign %s: %w", c.ID, err)
	}
	return nil
}

// UpsertDailyStat inserts or replaces one day of campaign stats.
func (s *Store) UpsertDailyStat(ctx context.Context, d DailyStat) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO daily_stats (campaign_id, date, clicks, conversions, cost, revenue)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(campaign_id, date) DO UPDATE SET
			clicks = excluded.clicks,
			conversions = excluded.conversions,
			cost = excluded.cost,
			revenue = excluded.revenue`,
		d.CampaignID, d.Date, d.Clicks, d.Conversions, d.Cost, d.Revenue)
	if err != nil {
		return fmt.Errorf("upsert daily stat %s/%s: %w", d.CampaignID, d.Date, err)
	}
	return nil
}

// ListCampaigns returns up to limit campaigns ordered by name.
func (s *Store) ListCampaigns(ctx context.Context, limit int) ([]Campaign, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, traffic_source, network, offer, status, created_at
		FROM campaigns ORDER BY name LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []Campaign
	for rows.Next() {
		var c Campaign
		var created string
		if err := rows.Scan(&c.ID, &c.Name, &c.TrafficSource, &c.Network, &c.Offer, &c.Status, &created); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		c.CreatedAt = parseStoredTime(created)
		out = append(out, c)
	}
	return out, rows.Err()
}

// DailyStats returns up to limit daily rows for one campaign within [from, to],
// oldest first.
func (s *Store) DailyStats(ctx context.Context, campaignID, from, to string, limit int) ([]DailyStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT campaign_id, date, clicks, conversions, cost, revenue
		FROM daily_stats
		WHERE campaign_id = ? AND date >= ? AND date <= ?
		ORDER BY date LIMIT ?`, campaignID, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("daily stats for %s: %w", campaignID, err)
	}
	defer rows.Close()

	var out []DailyStat
	for rows.Next() {
		var d DailyStat
		if err := rows.Scan(&d.CampaignID, &d.Date, &d.Clicks, &d.Conversions, &d.Cost, &d.Revenue); err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DailyTotals aggregates every campaign per day within [from, to], oldest
// first. Days with no recorded stats are absent from the result.
func (s *Store) DailyTotals(ctx context.Context, from, to string) ([]DayTotals, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, COALESCE(SUM(clicks), 0), COALESCE(SUM(conversions), 0),
		       COALESCE(SUM(cost), 0), COALESCE(SUM(revenue), 0)
		FROM daily_stats
		WHERE date >= ? AND date <= ?
		GROUP BY date ORDER BY date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	var out []DayTotals
	for rows.Next() {
		var dt DayTotals
		if err := rows.Scan(&dt.Date, &dt.Clicks, &dt.Conversions, &dt.Cost, &dt.Revenue); err != nil {
			return nil, fmt.Errorf("scan day totals: %w", err)
		}
		dt.finalize()
		out = append(out, dt)
	}
	return out, rows.Err()
}

// Totals aggregates every campaign within [from, to].
func (s *Store) Totals(ctx context.Context, from, to string) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(clicks), 0), COALESCE(SUM(conversions), 0),
		       COALESCE(SUM(cost), 0), COALESCE(SUM(revenue), 0)
		FROM daily_stats WHERE date >= ? AND date <= ?`, from, to).
		Scan(&t.Clicks, &t.Conversions, &t.Cost, &t.Revenue)
	if err != nil {
		return Totals{}, fmt.Errorf("aggregate totals: %w", err)
	}
	t.finalize()
	return t, nil
}

// CampaignTotals aggregates per campaign within [from, to], highest cost first.
func (s *Store) CampaignTotals(ctx context.Context, from, to string, limit int) ([]CampaignTotals, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name,
		       COALESCE(SUM(d.clicks), 0), COALESCE(SUM(d.conversions), 0),
		       COALESCE(SUM(d.cost), 0), COALESCE(SUM(d.revenue), 0)
		FROM campaigns c
		LEFT JOIN daily_stats d ON d.campaign_id = c.id AND d.date >= ? AND d.date <= ?
		GROUP BY c.id, c.name
		ORDER BY SUM(d.cost) DESC, c.id
		LIMIT ?`, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("campaign totals: %w", err)
	}
	defer rows.Close()

	var out []CampaignTotals
	for rows.Next() {
		var ct CampaignTotals
		if err := rows.Scan(&ct.CampaignID, &ct.Name, &ct.Clicks, &ct.Conversions, &ct.Cost, &ct.Revenue); err != nil {
			return nil, fmt.Errorf("scan campaign totals: %w", err)
		}
		ct.finalize()
		out = append(out, ct)
	}
	return out, rows.Err()
}

func parseStoredTime(v string) time.Time {
	t, err := time.Parse("2006-01-02T15:04:05Z", v)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Dimension selects the grouping column for TotalsByDimension.
type Dimension string

const (
	DimTrafficSource Dimension = "traffic_source"
	DimNetwork       Dimension = "network"
	DimOffer         Dimension = "offer"
)

// TotalsByDimension aggregates per dimension value within [from, to],
// highest cost first. The dimension is mapped to a fixed column name, never
// interpolated from caller input.
func (s *Store) TotalsByDimension(ctx context.Context, dim Dimension, from, to string, limit int) ([]GroupTotals, error) {
	var col string
	switch dim {
	case DimTrafficSource:
		col = "traffic_source"
	case DimNetwork:
		col = "network"
	case DimOffer:
		col = "offer"
	default:
		return nil, fmt.Errorf("unknown dimension %q", dim)
	}

	query := fmt.Sprintf(`
		SELECT c.%s, COUNT(DISTINCT c.id),
		       COALESCE(SUM(d.clicks), 0), COALESCE(SUM(d.conversions), 0),
		       COALESCE(SUM(d.cost), 0), COALESCE(SUM(d.revenue), 0)
		FROM campaigns c
		LEFT JOIN daily_stats d ON d.campaign_id = c.id AND d.date >= ? AND d.date <= ?
		GROUP BY c.%s
		ORDER BY SUM(d.cost) DESC, c.%s
		LIMIT ?`, col, col, col)

	rows, err := s.db.QueryContext(ctx, query, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("totals by %s: %w", col, err)
	}
	defer rows.Close()

	var out []GroupTotals
	for rows.Next() {
		var gt GroupTotals
		if err := rows.Scan(&gt.Key, &gt.Campaigns, &gt.Clicks, &gt.Conversions, &gt.Cost, &gt.Revenue); err != nil {
			return nil, fmt.Errorf("scan group totals: %w", err)
		}
		gt.finalize()
		out = append(out, gt)
	}
	return out, rows.Err()
}
