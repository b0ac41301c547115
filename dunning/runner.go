package dunning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go2gg/edge/internal/clock"
	"github.com/go2gg/edge/webhook"
	"github.com/rs/zerolog"
)

// CanceledEvent is published to the organization's webhooks when dunning cancels its subscription
const CanceledEvent = "subscription.canceled"

// Mailer sends one reminder email
type Mailer interface {
	SendDunningReminder(ctx context.Context, data EmailData) error
}

// Canceler cancels the subscription behind an expired record
type Canceler interface {
	CancelSubscription(ctx context.Context, r Record) error
}

// RunSummary reports what one scan did
type RunSummary struct {
	RemindersSent   int `json:"remindersSent"`
	RemindersFailed int `json:"remindersFailed"`
	Skipped         int `json:"skipped"`
	Canceled        int `json:"canceled"`
	CancelFailed    int `json:"cancelFailed"`
}

/* Runner drives the schedule: it sends due reminders and cancels expired records.
 * A step is claimed with MarkReminderSent before the email goes out, so two runners never
 * send the same reminder. If sending fails the claim is given back for the next scan.
 */
type Runner struct {
	svc      UseCase
	mailer   Mailer
	canceler Canceler
	clock    clock.Clock
	logger   zerolog.Logger
	recorder Recorder
}

type RunnerOption func(*Runner)

func WithRunnerClock(c clock.Clock) RunnerOption {
	return func(r *Runner) { r.clock = c }
}

func WithRunnerLogger(logger zerolog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

func WithRecorder(rec Recorder) RunnerOption {
	return func(r *Runner) { r.recorder = rec }
}

// NewRunner creates a runner; nil collaborators fall back to log-only implementations
func NewRunner(svc UseCase, mailer Mailer, canceler Canceler, opts ...RunnerOption) *Runner {
	r := &Runner{
		svc:      svc,
		mailer:   mailer,
		canceler: canceler,
		clock:    clock.System(),
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.mailer == nil {
		r.mailer = NewLogMailer(r.logger)
	}
	if r.canceler == nil {
		r.canceler = NewLogCanceler(r.logger)
	}
	return r
}

// Open starts dunning for a failed invoice and sends the day 0 reminder when the record is new
func (r *Runner) Open(ctx context.Context, input OpenInput) (Record, error) {
	rec, created, err := r.svc.Open(ctx, input)
	if err != nil {
		return Record{}, err
	}
	if !created {
		return rec, nil
	}

	now := r.clock.Now()
	if day, due := r.svc.Schedule().IsDue(rec, now); due {
		if _, err := r.remind(ctx, Reminder{Record: rec, Day: day}, now); err != nil {
			// the periodic scan picks the step up again
			r.logger.Warn().Err(err).Str("dunning_id", rec.ID).Msg("initial dunning reminder not sent")
		}
	}
	return r.svc.Get(ctx, rec.ID)
}

// Run performs one scan. Persistence errors are returned so the calling job retries;
// mail and cancellation failures are counted and left for the next scan.
func (r *Runner) Run(ctx context.Context) (RunSummary, error) {
	var summary RunSummary
	now := r.clock.Now()

	pending, err := r.svc.PendingReminders(ctx, now)
	if err != nil {
		return summary, err
	}

	var errs []error
	for _, reminder := range pending {
		sent, err := r.remind(ctx, reminder, now)
		switch {
		case errors.Is(err, ErrReminderAlreadySent), errors.Is(err, ErrClosed), errors.Is(err, ErrNotFound):
			summary.Skipped++
		case errors.Is(err, errMailer):
			summary.RemindersFailed++
		case err != nil:
			errs = append(errs, err)
		case sent:
			summary.RemindersSent++
		}
	}

	expired, err := r.svc.ExpiredRecords(ctx, now)
	if err != nil {
		return summary, errors.Join(append(errs, err)...)
	}
	for _, rec := range expired {
		if err := r.canceler.CancelSubscription(ctx, rec); err != nil {
			summary.CancelFailed++
			r.recordCancellation(ctx, false)
			r.logger.Error().Err(err).Str("dunning_id", rec.ID).Str("organization_id", rec.OrganizationID).
				Msg("canceling subscription")
			continue
		}
		if err := r.svc.MarkCanceled(ctx, rec.ID); err != nil {
			if errors.Is(err, ErrClosed) || errors.Is(err, ErrNotFound) {
				summary.Skipped++
				continue
			}
			errs = append(errs, err)
			continue
		}
		summary.Canceled++
		r.recordCancellation(ctx, true)
	}

	r.logger.Info().
		Int("reminders_sent", summary.RemindersSent).
		Int("reminders_failed", summary.RemindersFailed).
		Int("skipped", summary.Skipped).
		Int("canceled", summary.Canceled).
		Int("cancel_failed", summary.CancelFailed).
		Msg("dunning scan finished")

	return summary, errors.Join(errs...)
}

var errMailer = errors.New("sending reminder email")

func (r *Runner) remind(ctx context.Context, reminder Reminder, now time.Time) (bool, error) {
	rec := reminder.Record
	if err := r.svc.MarkReminderSent(ctx, rec.ID, reminder.Day); err != nil {
		return false, err
	}

	data := r.svc.BuildEmailData(rec, reminder.Day, now)
	if err := r.mailer.SendDunningReminder(ctx, data); err != nil {
		r.recordReminder(ctx, reminder.Day, false)
		r.logger.Error().Err(err).Str("dunning_id", rec.ID).Int("day", reminder.Day).Msg("sending dunning reminder")
		if restoreErr := r.svc.RestoreReminder(ctx, rec, reminder.Day); restoreErr != nil {
			r.logger.Error().Err(restoreErr).Str("dunning_id", rec.ID).Int("day", reminder.Day).
				Msg("reminder step stays claimed")
			return false, fmt.Errorf("%w: %w", errMailer, restoreErr)
		}
		return false, fmt.Errorf("%w: %w", errMailer, err)
	}

	r.recordReminder(ctx, reminder.Day, true)
	r.logger.Info().
		Str("dunning_id", rec.ID).
		Str("organization_id", rec.OrganizationID).
		Int("day", reminder.Day).
		Bool("will_be_canceled", data.WillBeCanceled).
		Msg("dunning reminder sent")
	return true, nil
}

func (r *Runner) recordReminder(ctx context.Context, day int, sent bool) {
	if r.recorder != nil {
		r.recorder.RecordDunningReminder(ctx, day, sent)
	}
}

func (r *Runner) recordCancellation(ctx context.Context, canceled bool) {
	if r.recorder != nil {
		r.recorder.RecordDunningCancellation(ctx, canceled)
	}
}

// LogMailer writes reminders to the log instead of sending email
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendDunningReminder(_ context.Context, data EmailData) error {
	m.logger.Info().
		Str("organization_id", data.OrganizationID).
		Str("invoice_id", data.InvoiceID).
		Int("day", data.ReminderDay).
		Int("days_overdue", data.DaysOverdue).
		Str("amount", data.AmountDisplay).
		Str("grace_period_end", data.GracePeriodEndDisplay).
		Bool("will_be_canceled", data.WillBeCanceled).
		Msg("dunning reminder email")
	return nil
}

// LogCanceler only logs; used when no billing collaborator is configured
type LogCanceler struct {
	logger zerolog.Logger
}

func NewLogCanceler(logger zerolog.Logger) *LogCanceler {
	return &LogCanceler{logger: logger}
}

func (c *LogCanceler) CancelSubscription(_ context.Context, r Record) error {
	c.logger.Warn().
		Str("organization_id", r.OrganizationID).
		Str("invoice_id", r.InvoiceID).
		Msg("subscription cancellation requested")
	return nil
}

// Publisher is the part of the webhook engine the canceler needs
type Publisher interface {
	Publish(scope webhook.Scope, event string, data any)
}

// WebhookCanceler announces the cancellation to the organization's webhook subscribers
type WebhookCanceler struct {
	publisher Publisher
	clock     clock.Clock
}

func NewWebhookCanceler(publisher Publisher, c clock.Clock) *WebhookCanceler {
	if c == nil {
		c = clock.System()
	}
	return &WebhookCanceler{publisher: publisher, clock: c}
}

func (c *WebhookCanceler) CancelSubscription(_ context.Context, r Record) error {
	c.publisher.Publish(webhook.Scope{OrganizationID: r.OrganizationID}, CanceledEvent, map[string]any{
		"organizationId":  r.OrganizationID,
		"stripeInvoiceId": r.InvoiceID,
		"reason":          "payment_failed",
		"failedAt":        r.FailedAt,
		"canceledAt":      c.clock.Now(),
	})
	return nil
}
