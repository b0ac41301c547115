package dunning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go2gg/edge/internal/clock"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// GracePeriodDateLayout formats the grace period end shown to customers
const GracePeriodDateLayout = "January 2, 2006"

// UseCase defines the dunning operations used by handlers, jobs and the runner
type UseCase interface {
	Open(ctx context.Context, input OpenInput) (Record, bool, error)
	Get(ctx context.Context, id string) (Record, error)
	PendingReminders(ctx context.Context, now time.Time) ([]Reminder, error)
	MarkReminderSent(ctx context.Context, id string, day int) error
	RestoreReminder(ctx context.Context, r Record, day int) error
	ExpiredRecords(ctx context.Context, now time.Time) ([]Record, error)
	Resolve(ctx context.Context, invoiceID string) error
	MarkCanceled(ctx context.Context, id string) error
	BuildEmailData(r Record, day int, now time.Time) EmailData
	Schedule() Schedule
}

// OpenInput describes a failed invoice payment
type OpenInput struct {
	OrganizationID string    `json:"organizationId" validate:"required"`
	InvoiceID      string    `json:"stripeInvoiceId" validate:"required"`
	Email          string    `json:"email" validate:"required,email"`
	Amount         int64     `json:"amount" validate:"gte=0"`
	Currency       string    `json:"currency" validate:"required,len=3,alpha"`
	FailedAt       time.Time `json:"failedAt"`
}

type Service struct {
	Repo Repository

	schedule Schedule
	clock    clock.Clock
	logger   zerolog.Logger
	validate *validator.Validate
}

type Option func(*Service)

func WithSchedule(s Schedule) Option {
	return func(svc *Service) { svc.schedule = s }
}

func WithClock(c clock.Clock) Option {
	return func(svc *Service) { svc.clock = c }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(svc *Service) { svc.logger = logger }
}

// NewService creates a dunning service on the default schedule unless one is given
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		Repo:     repo,
		schedule: DefaultSchedule(),
		clock:    clock.System(),
		logger:   zerolog.Nop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Schedule() Schedule {
	return s.schedule
}

// Open starts recovery for a failed invoice. A second failure of the same invoice returns the existing record.
func (s *Service) Open(ctx context.Context, input OpenInput) (Record, bool, error) {
	if err := s.validate.Struct(input); err != nil {
		return Record{}, false, fmt.Errorf("%w: %s", ErrInvalid, err.Error())
	}

	now := s.clock.Now()
	failedAt := input.FailedAt
	if failedAt.IsZero() {
		failedAt = now
	}

	rec, created, err := s.Repo.Create(ctx, Record{
		ID:             uuid.New().String(),
		OrganizationID: input.OrganizationID,
		InvoiceID:      input.InvoiceID,
		Email:          input.Email,
		Amount:         input.Amount,
		Currency:       strings.ToLower(input.Currency),
		FailedAt:       failedAt.UTC(),
		CreatedAt:      now,
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("creating dunning record: %w", err)
	}
	if created {
		s.logger.Info().
			Str("dunning_id", rec.ID).
			Str("organization_id", rec.OrganizationID).
			Str("invoice_id", rec.InvoiceID).
			Msg("dunning opened")
	}
	return rec, created, nil
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	rec, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Record{}, fmt.Errorf("getting dunning record: %w", err)
	}
	return rec, nil
}

// PendingReminders returns each open record whose next schedule step has been reached, with that step
func (s *Service) PendingReminders(ctx context.Context, now time.Time) ([]Reminder, error) {
	records, err := s.Repo.ListOpen(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("listing open dunning records: %w", err)
	}

	pending := make([]Reminder, 0)
	for _, rec := range records {
		if next, due := s.schedule.IsDue(rec, now); due {
			pending = append(pending, Reminder{Record: rec, Day: next})
		}
	}
	return pending, nil
}

// MarkReminderSent records that the reminder for day went out. Only one caller per step succeeds.
func (s *Service) MarkReminderSent(ctx context.Context, id string, day int) error {
	if !s.schedule.Contains(day) {
		return fmt.Errorf("%w: %d is not a reminder day", ErrInvalid, day)
	}
	if err := s.Repo.MarkReminderSent(ctx, id, day, s.clock.Now()); err != nil {
		return fmt.Errorf("marking reminder %d sent: %w", day, err)
	}
	return nil
}

// RestoreReminder gives back a step claimed with MarkReminderSent when the email could not be sent
func (s *Service) RestoreReminder(ctx context.Context, r Record, day int) error {
	if err := s.Repo.RestoreReminder(ctx, r.ID, day, r.LastReminderSent, r.LastReminderSentAt); err != nil {
		return fmt.Errorf("restoring reminder %d: %w", day, err)
	}
	return nil
}

// ExpiredRecords returns open records past the grace period; canceling the subscription is the caller's job
func (s *Service) ExpiredRecords(ctx context.Context, now time.Time) ([]Record, error) {
	records, err := s.Repo.ListExpired(ctx, s.schedule.ExpiryCutoff(now))
	if err != nil {
		return nil, fmt.Errorf("listing expired dunning records: %w", err)
	}
	return records, nil
}

// Resolve closes the invoice's record after a successful payment. Unknown invoices are ignored.
func (s *Service) Resolve(ctx context.Context, invoiceID string) error {
	if invoiceID == "" {
		return fmt.Errorf("%w: invoice id is required", ErrInvalid)
	}
	if err := s.Repo.Resolve(ctx, invoiceID, s.clock.Now()); err != nil {
		return fmt.Errorf("resolving dunning: %w", err)
	}
	s.logger.Info().Str("invoice_id", invoiceID).Msg("dunning resolved")
	return nil
}

// MarkCanceled closes an expired record once its subscription was canceled. Repeating it is a no-op;
// a resolved record returns ErrClosed.
func (s *Service) MarkCanceled(ctx context.Context, id string) error {
	if err := s.Repo.MarkCanceled(ctx, id, s.clock.Now()); err != nil {
		return fmt.Errorf("marking dunning canceled: %w", err)
	}
	s.logger.Info().Str("dunning_id", id).Msg("dunning canceled")
	return nil
}

// BuildEmailData assembles the reminder content for day
func (s *Service) BuildEmailData(r Record, day int, now time.Time) EmailData {
	end := s.schedule.GracePeriodEnd(r)
	return EmailData{
		OrganizationID:        r.OrganizationID,
		InvoiceID:             r.InvoiceID,
		Email:                 r.Email,
		Amount:                r.Amount,
		Currency:              r.Currency,
		AmountDisplay:         FormatAmount(r.Amount, r.Currency),
		ReminderDay:           day,
		DaysOverdue:           max(DaysSince(r.FailedAt, now), 0),
		GracePeriodEnd:        end,
		GracePeriodEndDisplay: end.Format(GracePeriodDateLayout),
		WillBeCanceled:        day >= s.schedule.FinalWarningDay,
	}
}

// FormatAmount renders minor units as "49.00 USD"
func FormatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, strings.ToUpper(currency))
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
