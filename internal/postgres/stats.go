package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Stats answers the gauge queries of the metrics collector
type Stats struct {
	pool *pgxpool.Pool
}

func NewStats(pool *pgxpool.Pool) *Stats {
	return &Stats{pool: pool}
}

// SubscriptionCounts returns active and disabled webhook subscriptions
func (s *Stats) SubscriptionCounts(ctx context.Context) (int64, int64, error) {
	var active, disabled int64
	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE is_active),
			COUNT(*) FILTER (WHERE NOT is_active)
		FROM webhook_subscriptions
	`).Scan(&active, &disabled)
	if err != nil {
		return 0, 0, fmt.Errorf("counting subscriptions: %w", err)
	}
	return active, disabled, nil
}

// OpenDunningCount returns records that are neither resolved nor canceled
func (s *Stats) OpenDunningCount(ctx context.Context) (int64, error) {
	var open int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM dunning_records WHERE resolved = FALSE AND canceled_at IS NULL`,
	).Scan(&open)
	if err != nil {
		return 0, fmt.Errorf("counting open dunning records: %w", err)
	}
	return open, nil
}
