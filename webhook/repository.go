package webhook

import (
	"context"
	"time"
)

/* Small, focused interfaces
 * Lookups by id return ErrNotFound when nothing matches.
 */

// SubscriptionReader provides read operations for subscriptions
type SubscriptionReader interface {
	GetSubscription(ctx context.Context, id string) (Subscription, error)
	ListSubscriptions(ctx context.Context, scope Scope) ([]Subscription, error)
	// ListActive returns the active subscriptions owned by scope; event filtering is done by the caller
	ListActive(ctx context.Context, scope Scope) ([]Subscription, error)
}

// SubscriptionWriter provides write operations for subscriptions
type SubscriptionWriter interface {
	CreateSubscription(ctx context.Context, sub Subscription) error
	DeleteSubscription(ctx context.Context, id string) error
	UpdateSecret(ctx context.Context, id, secret string, at time.Time) error
	// Reactivate sets the subscription active and clears its failure count
	Reactivate(ctx context.Context, id string, at time.Time) error
}

/* DeliveryBookkeeper applies the outcome of one delivery to its subscription.
 * Both operations must be single atomic updates so that concurrent deliveries
 * to the same subscription never lose an increment.
 */
type DeliveryBookkeeper interface {
	// RecordSuccess resets the failure count and stamps the last status
	RecordSuccess(ctx context.Context, id string, statusCode int, at time.Time) error
	// RecordFailure increments the failure count and deactivates the subscription when the
	// new count reaches threshold. It returns the new count and whether the subscription is still active.
	RecordFailure(ctx context.Context, id string, statusCode int, at time.Time, threshold int) (int, bool, error)
}

// DeliveryLog stores and reads the append-only delivery audit
type DeliveryLog interface {
	InsertDelivery(ctx context.Context, d Delivery) error
	GetDelivery(ctx context.Context, id string) (Delivery, error)
	ListDeliveries(ctx context.Context, webhookID string, filter DeliveryFilter) ([]Delivery, error)
}

type Repository interface {
	SubscriptionReader
	SubscriptionWriter
	DeliveryBookkeeper
	DeliveryLog
}

// Request is one outgoing signed POST
type Request struct {
	URL     string
	Headers map[string]string
	Body    []byte
}

// Sender performs one delivery attempt. It never returns an error: network failures
// are reported in the Outcome with StatusCode 0.
type Sender interface {
	Send(ctx context.Context, req Request) Outcome
}

// RetryScheduler arranges for a failed delivery to be attempted again later
type RetryScheduler interface {
	ScheduleRedelivery(ctx context.Context, deliveryID string, attempt int, delay time.Duration) error
}

// Recorder receives delivery metrics
type Recorder interface {
	RecordWebhookDelivery(ctx context.Context, event string, status Status, duration time.Duration)
}
