package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/go2gg/edge/webhook"
)

/* In-memory implementation of webhook.Repository
 * Used by tests and by local runs without Postgres. Every method holds one mutex,
 * which gives RecordFailure the same atomicity as the SQL update.
 */
type Repository struct {
	mu            sync.Mutex
	subscriptions map[string]webhook.Subscription
	deliveries    []webhook.Delivery
}

// NewRepository creates an empty repository
func NewRepository() *Repository {
	return &Repository{
		subscriptions: make(map[string]webhook.Subscription),
	}
}

func (r *Repository) GetSubscription(_ context.Context, id string) (webhook.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subscriptions[id]
	if !ok {
		return webhook.Subscription{}, webhook.ErrNotFound
	}
	return copySubscription(sub), nil
}

func (r *Repository) ListSubscriptions(_ context.Context, scope webhook.Scope) ([]webhook.Subscription, error) {
	return r.list(scope, false), nil
}

func (r *Repository) ListActive(_ context.Context, scope webhook.Scope) ([]webhook.Subscription, error) {
	return r.list(scope, true), nil
}

func (r *Repository) list(scope webhook.Scope, activeOnly bool) []webhook.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]webhook.Subscription, 0)
	for _, sub := range r.subscriptions {
		if !scope.Owns(sub) || (activeOnly && !sub.IsActive) {
			continue
		}
		out = append(out, copySubscription(sub))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *Repository) CreateSubscription(_ context.Context, sub webhook.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscriptions[sub.ID] = copySubscription(sub)
	return nil
}

func (r *Repository) DeleteSubscription(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subscriptions[id]; !ok {
		return webhook.ErrNotFound
	}
	delete(r.subscriptions, id)
	return nil
}

func (r *Repository) UpdateSecret(_ context.Context, id, secret string, at time.Time) error {
	return r.update(id, func(sub *webhook.Subscription) {
		sub.Secret = secret
		sub.UpdatedAt = at
	})
}

func (r *Repository) Reactivate(_ context.Context, id string, at time.Time) error {
	return r.update(id, func(sub *webhook.Subscription) {
		sub.IsActive = true
		sub.FailureCount = 0
		sub.UpdatedAt = at
	})
}

func (r *Repository) RecordSuccess(_ context.Context, id string, statusCode int, at time.Time) error {
	return r.update(id, func(sub *webhook.Subscription) {
		sub.FailureCount = 0
		sub.LastStatus = statusCode
		sub.LastTriggeredAt = &at
		sub.UpdatedAt = at
	})
}

func (r *Repository) RecordFailure(_ context.Context, id string, statusCode int, at time.Time, threshold int) (int, bool, error) {
	var count int
	var active bool
	err := r.update(id, func(sub *webhook.Subscription) {
		sub.FailureCount++
		if sub.FailureCount >= threshold {
			sub.IsActive = false
		}
		sub.LastStatus = statusCode
		sub.LastTriggeredAt = &at
		sub.UpdatedAt = at
		count, active = sub.FailureCount, sub.IsActive
	})
	return count, active, err
}

func (r *Repository) update(id string, fn func(*webhook.Subscription)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subscriptions[id]
	if !ok {
		return webhook.ErrNotFound
	}
	fn(&sub)
	r.subscriptions[id] = sub
	return nil
}

func (r *Repository) InsertDelivery(_ context.Context, d webhook.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d.Payload = append([]byte(nil), d.Payload...)
	r.deliveries = append(r.deliveries, d)
	return nil
}

func (r *Repository) GetDelivery(_ context.Context, id string) (webhook.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.deliveries {
		if d.ID == id {
			return d, nil
		}
	}
	return webhook.Delivery{}, webhook.ErrNotFound
}

// ListDeliveries returns newest first
func (r *Repository) ListDeliveries(_ context.Context, webhookID string, filter webhook.DeliveryFilter) ([]webhook.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]webhook.Delivery, 0)
	for i := len(r.deliveries) - 1; i >= 0; i-- {
		d := r.deliveries[i]
		if d.WebhookID != webhookID || !filter.Status.Matches(d.Success) {
			continue
		}
		out = append(out, d)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// DeliveryCount returns the number of stored audit rows
func (r *Repository) DeliveryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.deliveries)
}

func copySubscription(sub webhook.Subscription) webhook.Subscription {
	sub.Events = append([]string(nil), sub.Events...)
	if sub.LastTriggeredAt != nil {
		t := *sub.LastTriggeredAt
		sub.LastTriggeredAt = &t
	}
	return sub
}
