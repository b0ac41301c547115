package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go2gg/edge/internal/clock"
	"github.com/go2gg/edge/webhook/payload"
	"github.com/go2gg/edge/webhook/signature"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the webhook operations exposed to handlers, jobs and other domains
type UseCase interface {
	Dispatch(ctx context.Context, scope Scope, event string, data any) (DispatchSummary, error)
	Publish(scope Scope, event string, data any)
	Test(ctx context.Context, scope Scope, id string) (Outcome, error)
	Redeliver(ctx context.Context, deliveryID string, attempt int) error

	Create(ctx context.Context, scope Scope, input CreateInput) (Subscription, error)
	List(ctx context.Context, scope Scope) ([]Subscription, error)
	Get(ctx context.Context, scope Scope, id string) (Subscription, error)
	Delete(ctx context.Context, scope Scope, id string) error
	Reactivate(ctx context.Context, scope Scope, id string) (Subscription, error)
	RotateSecret(ctx context.Context, scope Scope, id string) (Subscription, error)
	ListDeliveries(ctx context.Context, scope Scope, id string, filter DeliveryFilter) ([]Delivery, error)
}

// CreateInput is what a tenant supplies to register an endpoint
type CreateInput struct {
	URL    string   `validate:"required,http_url,max=2048"`
	Events []string `validate:"required,min=1,max=50,dive,required"`
}

type Service struct {
	Repo   Repository
	Sender Sender

	clock          clock.Clock
	logger         zerolog.Logger
	recorder       Recorder
	retry          RetryScheduler
	maxRedelivery  int
	retryBaseDelay time.Duration
	validate       *validator.Validate
}

type Option func(*Service)

func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithRetryScheduler enables delayed redelivery of failed attempts, at most maxRedeliveries per event,
// waiting baseDelay, 2*baseDelay, 4*baseDelay...
func WithRetryScheduler(r RetryScheduler, maxRedeliveries int, baseDelay time.Duration) Option {
	return func(s *Service) {
		s.retry = r
		s.maxRedelivery = maxRedeliveries
		s.retryBaseDelay = baseDelay
	}
}

// NewService creates a new webhook service with dependency injection
func NewService(repo Repository, sender Sender, opts ...Option) *Service {
	s := &Service{
		Repo:           repo,
		Sender:         sender,
		clock:          clock.System(),
		logger:         zerolog.Nop(),
		retryBaseDelay: time.Minute,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetRetryScheduler wires the scheduler after construction; the queue needs the service to exist first
func (s *Service) SetRetryScheduler(r RetryScheduler, maxRedeliveries int, baseDelay time.Duration) {
	WithRetryScheduler(r, maxRedeliveries, baseDelay)(s)
}

// Create registers a new endpoint. The returned subscription carries the secret; it is the only time it is shown.
func (s *Service) Create(ctx context.Context, scope Scope, input CreateInput) (Subscription, error) {
	if err := scope.Validate(); err != nil {
		return Subscription{}, err
	}
	if err := s.validate.Struct(input); err != nil {
		return Subscription{}, fmt.Errorf("%w: %s", ErrInvalid, err.Error())
	}
	for _, e := range input.Events {
		if err := payload.ValidateSubscription(e); err != nil {
			return Subscription{}, fmt.Errorf("%w: %s", ErrInvalid, err.Error())
		}
	}

	secret, err := signature.GenerateSecret()
	if err != nil {
		return Subscription{}, fmt.Errorf("generating secret: %w", err)
	}

	now := s.clock.Now()
	sub := Subscription{
		ID:             uuid.New().String(),
		UserID:         scope.UserID,
		OrganizationID: scope.OrganizationID,
		URL:            input.URL,
		Secret:         secret,
		Events:         dedupe(input.Events),
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.CreateSubscription(ctx, sub); err != nil {
		return Subscription{}, fmt.Errorf("storing subscription: %w", err)
	}

	s.logger.Info().Str("webhook_id", sub.ID).Strs("events", sub.Events).Msg("webhook subscription created")
	return sub, nil
}

// List returns the subscriptions owned by scope
func (s *Service) List(ctx context.Context, scope Scope) ([]Subscription, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	subs, err := s.Repo.ListSubscriptions(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	return subs, nil
}

// Get returns one subscription; subscriptions of other tenants are reported as not found
func (s *Service) Get(ctx context.Context, scope Scope, id string) (Subscription, error) {
	if err := scope.Validate(); err != nil {
		return Subscription{}, err
	}
	sub, err := s.Repo.GetSubscription(ctx, id)
	if err != nil {
		return Subscription{}, fmt.Errorf("getting subscription: %w", err)
	}
	if !scope.Owns(sub) {
		return Subscription{}, fmt.Errorf("getting subscription: %w", ErrNotFound)
	}
	return sub, nil
}

// Delete removes a subscription. Past deliveries are kept.
func (s *Service) Delete(ctx context.Context, scope Scope, id string) error {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteSubscription(ctx, id); err != nil {
		return fmt.Errorf("deleting subscription: %w", err)
	}
	s.logger.Info().Str("webhook_id", id).Msg("webhook subscription deleted")
	return nil
}

// Reactivate turns a disabled subscription back on with a clean failure count
func (s *Service) Reactivate(ctx context.Context, scope Scope, id string) (Subscription, error) {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return Subscription{}, err
	}
	if err := s.Repo.Reactivate(ctx, id, s.clock.Now()); err != nil {
		return Subscription{}, fmt.Errorf("reactivating subscription: %w", err)
	}
	s.logger.Info().Str("webhook_id", id).Msg("webhook subscription reactivated")
	return s.Get(ctx, scope, id)
}

// RotateSecret replaces the signing secret and returns the subscription carrying the new one
func (s *Service) RotateSecret(ctx context.Context, scope Scope, id string) (Subscription, error) {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return Subscription{}, err
	}
	secret, err := signature.GenerateSecret()
	if err != nil {
		return Subscription{}, fmt.Errorf("generating secret: %w", err)
	}
	if err := s.Repo.UpdateSecret(ctx, id, secret, s.clock.Now()); err != nil {
		return Subscription{}, fmt.Errorf("rotating secret: %w", err)
	}
	s.logger.Info().Str("webhook_id", id).Msg("webhook secret rotated")
	return s.Get(ctx, scope, id)
}

// ListDeliveries returns the audit rows of one subscription, newest first
func (s *Service) ListDeliveries(ctx context.Context, scope Scope, id string, filter DeliveryFilter) ([]Delivery, error) {
	if _, err := s.Get(ctx, scope, id); err != nil {
		return nil, err
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	deliveries, err := s.Repo.ListDeliveries(ctx, id, filter)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	return deliveries, nil
}

// IsNotFound reports whether err means the subscription or delivery does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func dedupe(events []string) []string {
	seen := make(map[string]struct{}, len(events))
	out := make([]string, 0, len(events))
	for _, e := range events {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
