package dunning

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("dunning record not found")
	ErrInvalid  = errors.New("invalid input")
	// ErrReminderAlreadySent is returned when another caller already advanced the record to the same or a later step
	ErrReminderAlreadySent = errors.New("reminder already sent")
	// ErrClosed is returned when a resolved or canceled record is asked to change
	ErrClosed = errors.New("dunning record closed")
)

/* Record tracks the recovery of one failed invoice
 * LastReminderSentAt is nil until the day 0 reminder goes out. Resolved and CanceledAt
 * are mutually exclusive terminal markers.
 */
type Record struct {
	ID                 string     `json:"id"`
	OrganizationID     string     `json:"organizationId"`
	InvoiceID          string     `json:"stripeInvoiceId"`
	Email              string     `json:"email"`
	Amount             int64      `json:"amount"`
	Currency           string     `json:"currency"`
	FailedAt           time.Time  `json:"failedAt"`
	LastReminderSent   int        `json:"lastReminderSent"`
	LastReminderSentAt *time.Time `json:"lastReminderSentAt,omitempty"`
	Resolved           bool       `json:"resolved"`
	ResolvedAt         *time.Time `json:"resolvedAt,omitempty"`
	CanceledAt         *time.Time `json:"canceledAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// Open reports whether the record still takes part in scans
func (r Record) Open() bool {
	return !r.Resolved && r.CanceledAt == nil
}

// Reminder is a record together with the schedule step that is due for it
type Reminder struct {
	Record Record `json:"record"`
	Day    int    `json:"day"`
}

// EmailData is everything a reminder email needs
type EmailData struct {
	OrganizationID        string    `json:"organizationId"`
	InvoiceID             string    `json:"invoiceId"`
	Email                 string    `json:"email"`
	Amount                int64     `json:"amount"`
	Currency              string    `json:"currency"`
	AmountDisplay         string    `json:"amountDisplay"`
	ReminderDay           int       `json:"reminderDay"`
	DaysOverdue           int       `json:"daysOverdue"`
	GracePeriodEnd        time.Time `json:"gracePeriodEnd"`
	GracePeriodEndDisplay string    `json:"gracePeriodEndDisplay"`
	WillBeCanceled        bool      `json:"willBeCanceled"`
}

// Repository persists dunning records. Lookups by id return ErrNotFound when nothing matches.
type Repository interface {
	// Create inserts the record unless one exists for its invoice; it returns the stored record
	// and whether it was created by this call
	Create(ctx context.Context, r Record) (Record, bool, error)
	Get(ctx context.Context, id string) (Record, error)
	GetByInvoice(ctx context.Context, invoiceID string) (Record, error)
	// ListOpen returns unresolved, non-canceled records with failed_at at or before failedBy, oldest first
	ListOpen(ctx context.Context, failedBy time.Time) ([]Record, error)
	// ListExpired returns unresolved, non-canceled records with failed_at strictly before cutoff, oldest first
	ListExpired(ctx context.Context, cutoff time.Time) ([]Record, error)

	/* MarkReminderSent advances the record to day only if it is open and day is ahead of
	 * what was sent. Day 0 is accepted once, while no reminder has been stamped.
	 * A lost race returns ErrReminderAlreadySent; a closed record returns ErrClosed.
	 */
	MarkReminderSent(ctx context.Context, id string, day int, at time.Time) error
	// RestoreReminder undoes a MarkReminderSent to day, putting back the previous step and stamp
	RestoreReminder(ctx context.Context, id string, day, previous int, previousAt *time.Time) error
	// Resolve marks the invoice's record resolved; an unknown or already resolved invoice is a no-op
	Resolve(ctx context.Context, invoiceID string, at time.Time) error
	MarkCanceled(ctx context.Context, id string, at time.Time) error
}

// Recorder receives dunning metrics
type Recorder interface {
	RecordDunningReminder(ctx context.Context, day int, sent bool)
	RecordDunningCancellation(ctx context.Context, canceled bool)
}
