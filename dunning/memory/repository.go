package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go2gg/edge/dunning"
)

// Repository is an in-memory dunning.Repository. One mutex makes every conditional update atomic.
type Repository struct {
	mu        sync.Mutex
	records   map[string]dunning.Record
	byInvoice map[string]string
}

func NewRepository() *Repository {
	return &Repository{
		records:   make(map[string]dunning.Record),
		byInvoice: make(map[string]string),
	}
}

func (r *Repository) Create(_ context.Context, rec dunning.Record) (dunning.Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.byInvoice[rec.InvoiceID]; ok {
		return copyRecord(r.records[id]), false, nil
	}
	r.records[rec.ID] = copyRecord(rec)
	r.byInvoice[rec.InvoiceID] = rec.ID
	return copyRecord(rec), true, nil
}

func (r *Repository) Get(_ context.Context, id string) (dunning.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return dunning.Record{}, dunning.ErrNotFound
	}
	return copyRecord(rec), nil
}

func (r *Repository) GetByInvoice(_ context.Context, invoiceID string) (dunning.Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byInvoice[invoiceID]
	if !ok {
		return dunning.Record{}, dunning.ErrNotFound
	}
	return copyRecord(r.records[id]), nil
}

func (r *Repository) ListOpen(_ context.Context, failedBy time.Time) ([]dunning.Record, error) {
	return r.filter(func(rec dunning.Record) bool { return !rec.FailedAt.After(failedBy) }), nil
}

func (r *Repository) ListExpired(_ context.Context, cutoff time.Time) ([]dunning.Record, error) {
	return r.filter(func(rec dunning.Record) bool { return rec.FailedAt.Before(cutoff) }), nil
}

func (r *Repository) filter(keep func(dunning.Record) bool) []dunning.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]dunning.Record, 0)
	for _, rec := range r.records {
		if rec.Open() && keep(rec) {
			out = append(out, copyRecord(rec))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FailedAt.Equal(out[j].FailedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].FailedAt.Before(out[j].FailedAt)
	})
	return out
}

func (r *Repository) MarkReminderSent(_ context.Context, id string, day int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return dunning.ErrNotFound
	}
	if !rec.Open() {
		return dunning.ErrClosed
	}
	ahead := rec.LastReminderSent < day || (rec.LastReminderSent == day && rec.LastReminderSentAt == nil)
	if !ahead {
		return dunning.ErrReminderAlreadySent
	}
	rec.LastReminderSent = day
	rec.LastReminderSentAt = &at
	r.records[id] = rec
	return nil
}

func (r *Repository) RestoreReminder(_ context.Context, id string, day, previous int, previousAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return dunning.ErrNotFound
	}
	if rec.LastReminderSent != day {
		return dunning.ErrReminderAlreadySent
	}
	rec.LastReminderSent = previous
	rec.LastReminderSentAt = copyTime(previousAt)
	r.records[id] = rec
	return nil
}

func (r *Repository) Resolve(_ context.Context, invoiceID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byInvoice[invoiceID]
	if !ok {
		return nil
	}
	rec := r.records[id]
	if rec.Resolved || rec.CanceledAt != nil {
		return nil
	}
	rec.Resolved = true
	rec.ResolvedAt = &at
	r.records[id] = rec
	return nil
}

func (r *Repository) MarkCanceled(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return dunning.ErrNotFound
	}
	if rec.Resolved {
		return dunning.ErrClosed
	}
	if rec.CanceledAt != nil {
		return nil
	}
	rec.CanceledAt = &at
	r.records[id] = rec
	return nil
}

func copyRecord(rec dunning.Record) dunning.Record {
	rec.LastReminderSentAt = copyTime(rec.LastReminderSentAt)
	rec.ResolvedAt = copyTime(rec.ResolvedAt)
	rec.CanceledAt = copyTime(rec.CanceledAt)
	return rec
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
