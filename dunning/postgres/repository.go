package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go2gg/edge/dunning"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

/*
PostgreSQL implementation of dunning.Repository

Schedule advances are compare-and-swap updates guarded by last_reminder_sent, so
concurrent scans agree on a single winner per step.
*/

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const recordColumns = `id, organization_id, stripe_invoice_id, email, amount, currency, failed_at,
	last_reminder_sent, last_reminder_sent_at, resolved, resolved_at, canceled_at, created_at`

func scanRecord(row pgx.Row) (dunning.Record, error) {
	var r dunning.Record
	err := row.Scan(
		&r.ID,
		&r.OrganizationID,
		&r.InvoiceID,
		&r.Email,
		&r.Amount,
		&r.Currency,
		&r.FailedAt,
		&r.LastReminderSent,
		&r.LastReminderSentAt,
		&r.Resolved,
		&r.ResolvedAt,
		&r.CanceledAt,
		&r.CreatedAt,
	)
	return r, err
}

func (r *Repository) Create(ctx context.Context, rec dunning.Record) (dunning.Record, bool, error) {
	query := `
		INSERT INTO dunning_records (
			id, organization_id, stripe_invoice_id, email, amount, currency, failed_at,
			last_reminder_sent, last_reminder_sent_at, resolved, resolved_at, canceled_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (stripe_invoice_id) DO NOTHING
		RETURNING ` + recordColumns
	created, err := scanRecord(r.db.QueryRow(ctx, query,
		rec.ID,
		rec.OrganizationID,
		rec.InvoiceID,
		rec.Email,
		rec.Amount,
		rec.Currency,
		rec.FailedAt,
		rec.LastReminderSent,
		rec.LastReminderSentAt,
		rec.Resolved,
		rec.ResolvedAt,
		rec.CanceledAt,
		rec.CreatedAt,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return dunning.Record{}, false, fmt.Errorf("inserting dunning record: %w", err)
	}

	existing, err := r.GetByInvoice(ctx, rec.InvoiceID)
	if err != nil {
		return dunning.Record{}, false, err
	}
	return existing, false, nil
}

func (r *Repository) Get(ctx context.Context, id string) (dunning.Record, error) {
	return r.getOne(ctx, `SELECT `+recordColumns+` FROM dunning_records WHERE id = $1`, id)
}

func (r *Repository) GetByInvoice(ctx context.Context, invoiceID string) (dunning.Record, error) {
	return r.getOne(ctx, `SELECT `+recordColumns+` FROM dunning_records WHERE stripe_invoice_id = $1`, invoiceID)
}

func (r *Repository) getOne(ctx context.Context, query string, arg string) (dunning.Record, error) {
	rec, err := scanRecord(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return dunning.Record{}, dunning.ErrNotFound
	}
	if err != nil {
		return dunning.Record{}, fmt.Errorf("selecting dunning record: %w", err)
	}
	return rec, nil
}

func (r *Repository) ListOpen(ctx context.Context, failedBy time.Time) ([]dunning.Record, error) {
	return r.list(ctx, `failed_at <= $1`, failedBy)
}

func (r *Repository) ListExpired(ctx context.Context, cutoff time.Time) ([]dunning.Record, error) {
	return r.list(ctx, `failed_at < $1`, cutoff)
}

func (r *Repository) list(ctx context.Context, cond string, at time.Time) ([]dunning.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM dunning_records
		WHERE resolved = FALSE AND canceled_at IS NULL AND ` + cond + `
		ORDER BY failed_at, id`
	rows, err := r.db.Query(ctx, query, at)
	if err != nil {
		return nil, fmt.Errorf("listing dunning records: %w", err)
	}
	defer rows.Close()

	records := make([]dunning.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning dunning record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Repository) MarkReminderSent(ctx context.Context, id string, day int, at time.Time) error {
	query := `
		UPDATE dunning_records
		SET last_reminder_sent = $2, last_reminder_sent_at = $3
		WHERE id = $1
			AND resolved = FALSE
			AND canceled_at IS NULL
			AND (last_reminder_sent < $2 OR (last_reminder_sent = $2 AND last_reminder_sent_at IS NULL))
	`
	tag, err := r.db.Exec(ctx, query, id, day, at)
	if err != nil {
		return fmt.Errorf("updating reminder step: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return r.explainMiss(ctx, id)
}

func (r *Repository) RestoreReminder(ctx context.Context, id string, day, previous int, previousAt *time.Time) error {
	query := `
		UPDATE dunning_records
		SET last_reminder_sent = $3, last_reminder_sent_at = $4
		WHERE id = $1 AND last_reminder_sent = $2
	`
	tag, err := r.db.Exec(ctx, query, id, day, previous, previousAt)
	if err != nil {
		return fmt.Errorf("restoring reminder step: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return dunning.ErrReminderAlreadySent
}

// explainMiss tells apart why a conditional update touched no row
func (r *Repository) explainMiss(ctx context.Context, id string) error {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if !rec.Open() {
		return dunning.ErrClosed
	}
	return dunning.ErrReminderAlreadySent
}

func (r *Repository) Resolve(ctx context.Context, invoiceID string, at time.Time) error {
	query := `
		UPDATE dunning_records
		SET resolved = TRUE, resolved_at = $2
		WHERE stripe_invoice_id = $1 AND resolved = FALSE AND canceled_at IS NULL
	`
	if _, err := r.db.Exec(ctx, query, invoiceID, at); err != nil {
		return fmt.Errorf("resolving dunning record: %w", err)
	}
	return nil
}

func (r *Repository) MarkCanceled(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE dunning_records
		SET canceled_at = $2
		WHERE id = $1 AND resolved = FALSE AND canceled_at IS NULL
	`
	tag, err := r.db.Exec(ctx, query, id, at)
	if err != nil {
		return fmt.Errorf("canceling dunning record: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	rec, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.Resolved {
		return dunning.ErrClosed
	}
	return nil
}
