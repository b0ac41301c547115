package webhook

import (
	"errors"
	"fmt"
	"time"

	"github.com/go2gg/edge/webhook/payload"
)

const (
	// MaxConsecutiveFailures disables a subscription when its failure count reaches it
	MaxConsecutiveFailures = 10

	// ResponseLimit bounds the stored response body, in characters
	ResponseLimit = 1000

	// UserAgent is sent with every delivery
	UserAgent = "Go2-Webhooks/1.0"

	// TestEvent is the event name used by test deliveries
	TestEvent = "webhook.test"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid input")
)

/* Scope identifies the tenant that owns subscriptions.
 * When OrganizationID is set the organization owns them, otherwise the user does.
 */
type Scope struct {
	UserID         string
	OrganizationID string
}

// Validate checks the scope names an owner
func (s Scope) Validate() error {
	if s.UserID == "" && s.OrganizationID == "" {
		return fmt.Errorf("%w: scope requires a user or an organization", ErrInvalid)
	}
	return nil
}

// Owns reports whether sub belongs to the scope
func (s Scope) Owns(sub Subscription) bool {
	if s.OrganizationID != "" {
		return sub.OrganizationID == s.OrganizationID
	}
	return sub.OrganizationID == "" && sub.UserID == s.UserID
}

/* Subscription is an endpoint registered by a tenant
 * Secret signs outgoing requests; it is returned to the tenant only on create and rotate
 * and must never reach a log line.
 */
type Subscription struct {
	ID              string
	UserID          string
	OrganizationID  string
	URL             string
	Secret          string
	Events          []string
	IsActive        bool
	FailureCount    int
	LastTriggeredAt *time.Time
	LastStatus      int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Subscribes reports whether the subscription receives event
func (s Subscription) Subscribes(event string) bool {
	return payload.Matches(s.Events, event)
}

/* Delivery is the immutable audit record of one attempt
 * StatusCode is 0 when the request never got an HTTP response.
 */
type Delivery struct {
	ID         string
	WebhookID  string
	Event      string
	Payload    []byte
	StatusCode int
	Response   string
	Duration   time.Duration
	Success    bool
	Attempts   int
	CreatedAt  time.Time
}

// Status classifies the delivery
func (d Delivery) Status() Status {
	if d.Success {
		return Succeeded
	}
	return Failed
}

// Outcome is the raw result of sending one request
type Outcome struct {
	StatusCode int
	Response   string
	Duration   time.Duration
	Success    bool
	Err        error
}

// DispatchSummary reports what one dispatch did
type DispatchSummary struct {
	Event      string
	Attempted  int
	Succeeded  int
	Failed     int
	Deliveries []Delivery
}

// DeliveryFilter narrows delivery listings
type DeliveryFilter struct {
	Status Status // zero value means any
	Limit  int
}
