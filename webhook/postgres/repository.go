package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go2gg/edge/webhook"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

/*
PostgreSQL implementation of webhook.Repository

Bookkeeping runs as single UPDATE ... RETURNING statements so concurrent
deliveries to one subscription never lose a failure increment.
*/

type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a repository on an open pool
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const subscriptionColumns = `id, user_id, COALESCE(organization_id, ''), url, secret, events, is_active,
	failure_count, last_triggered_at, last_status, created_at, updated_at`

func scanSubscription(row pgx.Row) (webhook.Subscription, error) {
	var s webhook.Subscription
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.OrganizationID,
		&s.URL,
		&s.Secret,
		&s.Events,
		&s.IsActive,
		&s.FailureCount,
		&s.LastTriggeredAt,
		&s.LastStatus,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

func (r *Repository) GetSubscription(ctx context.Context, id string) (webhook.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM webhook_subscriptions WHERE id = $1`
	s, err := scanSubscription(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return webhook.Subscription{}, webhook.ErrNotFound
	}
	if err != nil {
		return webhook.Subscription{}, fmt.Errorf("selecting subscription: %w", err)
	}
	return s, nil
}

func (r *Repository) ListSubscriptions(ctx context.Context, scope webhook.Scope) ([]webhook.Subscription, error) {
	return r.list(ctx, scope, false)
}

func (r *Repository) ListActive(ctx context.Context, scope webhook.Scope) ([]webhook.Subscription, error) {
	return r.list(ctx, scope, true)
}

func (r *Repository) list(ctx context.Context, scope webhook.Scope, activeOnly bool) ([]webhook.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM webhook_subscriptions WHERE `
	var args []any
	if scope.OrganizationID != "" {
		query += `organization_id = $1`
		args = append(args, scope.OrganizationID)
	} else {
		query += `user_id = $1 AND organization_id IS NULL`
		args = append(args, scope.UserID)
	}
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	defer rows.Close()

	subs := make([]webhook.Subscription, 0)
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func (r *Repository) CreateSubscription(ctx context.Context, s webhook.Subscription) error {
	query := `
		INSERT INTO webhook_subscriptions (
			id, user_id, organization_id, url, secret, events, is_active,
			failure_count, last_triggered_at, last_status, created_at, updated_at
		) VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.OrganizationID,
		s.URL,
		s.Secret,
		s.Events,
		s.IsActive,
		s.FailureCount,
		s.LastTriggeredAt,
		s.LastStatus,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting subscription: %w", err)
	}
	return nil
}

func (r *Repository) DeleteSubscription(ctx context.Context, id string) error {
	return r.exec(ctx, "deleting subscription", `DELETE FROM webhook_subscriptions WHERE id = $1`, id)
}

func (r *Repository) UpdateSecret(ctx context.Context, id, secret string, at time.Time) error {
	return r.exec(ctx, "updating secret",
		`UPDATE webhook_subscriptions SET secret = $2, updated_at = $3 WHERE id = $1`,
		id, secret, at)
}

func (r *Repository) Reactivate(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, "reactivating subscription",
		`UPDATE webhook_subscriptions SET is_active = TRUE, failure_count = 0, updated_at = $2 WHERE id = $1`,
		id, at)
}

func (r *Repository) RecordSuccess(ctx context.Context, id string, statusCode int, at time.Time) error {
	return r.exec(ctx, "recording success", `
		UPDATE webhook_subscriptions
		SET failure_count = 0, last_status = $2, last_triggered_at = $3, updated_at = $3
		WHERE id = $1`,
		id, statusCode, at)
}

func (r *Repository) RecordFailure(ctx context.Context, id string, statusCode int, at time.Time, threshold int) (int, bool, error) {
	query := `
		UPDATE webhook_subscriptions
		SET failure_count = failure_count + 1,
			is_active = CASE WHEN failure_count + 1 >= $4 THEN FALSE ELSE is_active END,
			last_status = $2,
			last_triggered_at = $3,
			updated_at = $3
		WHERE id = $1
		RETURNING failure_count, is_active
	`
	var count int
	var active bool
	err := r.db.QueryRow(ctx, query, id, statusCode, at, threshold).Scan(&count, &active)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, webhook.ErrNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("recording failure: %w", err)
	}
	return count, active, nil
}

func (r *Repository) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return webhook.ErrNotFound
	}
	return nil
}

func (r *Repository) InsertDelivery(ctx context.Context, d webhook.Delivery) error {
	query := `
		INSERT INTO webhook_deliveries (
			id, webhook_id, event, payload, status_code, response, duration_ms, success, attempts, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.Exec(ctx, query,
		d.ID,
		d.WebhookID,
		d.Event,
		d.Payload,
		d.StatusCode,
		d.Response,
		d.Duration.Milliseconds(),
		d.Success,
		d.Attempts,
		d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting delivery: %w", err)
	}
	return nil
}

const deliveryColumns = `id, webhook_id, event, payload, status_code, response, duration_ms, success, attempts, created_at`

func scanDelivery(row pgx.Row) (webhook.Delivery, error) {
	var d webhook.Delivery
	var durationMs int64
	err := row.Scan(
		&d.ID,
		&d.WebhookID,
		&d.Event,
		&d.Payload,
		&d.StatusCode,
		&d.Response,
		&durationMs,
		&d.Success,
		&d.Attempts,
		&d.CreatedAt,
	)
	d.Duration = time.Duration(durationMs) * time.Millisecond
	return d, err
}

func (r *Repository) GetDelivery(ctx context.Context, id string) (webhook.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM webhook_deliveries WHERE id = $1`
	d, err := scanDelivery(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return webhook.Delivery{}, webhook.ErrNotFound
	}
	if err != nil {
		return webhook.Delivery{}, fmt.Errorf("selecting delivery: %w", err)
	}
	return d, nil
}

// ListDeliveries returns newest first
func (r *Repository) ListDeliveries(ctx context.Context, webhookID string, filter webhook.DeliveryFilter) ([]webhook.Delivery, error) {
	query := `SELECT ` + deliveryColumns + ` FROM webhook_deliveries WHERE webhook_id = $1`
	args := []any{webhookID}
	switch filter.Status {
	case webhook.Succeeded:
		query += ` AND success = TRUE`
	case webhook.Failed:
		query += ` AND success = FALSE`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	defer rows.Close()

	deliveries := make([]webhook.Delivery, 0)
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning delivery: %w", err)
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
