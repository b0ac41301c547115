package webhook

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go2gg/edge/webhook/payload"
	"github.com/go2gg/edge/webhook/signature"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
)

// Headers set on every delivery
const (
	HeaderID        = "X-Webhook-ID"
	HeaderEvent     = "X-Webhook-Event"
	HeaderSignature = "X-Webhook-Signature"
	HeaderTimestamp = "X-Webhook-Timestamp"
)

/* Dispatch delivers event to every active subscription of scope that subscribes to it.
 * Deliveries run concurrently and independently; Dispatch waits for all of them.
 * A failed delivery is bookkeeping, never an error: only failing to look up
 * the subscriptions (or an invalid event) is returned.
 */
func (s *Service) Dispatch(ctx context.Context, scope Scope, event string, data any) (DispatchSummary, error) {
	summary := DispatchSummary{Event: event}
	if err := scope.Validate(); err != nil {
		return summary, err
	}

	env, err := payload.New(event, data, s.clock.Now())
	if err != nil {
		return summary, fmt.Errorf("%w: %s", ErrInvalid, err.Error())
	}
	body, err := env.Bytes()
	if err != nil {
		return summary, fmt.Errorf("serializing payload: %w", err)
	}

	active, err := s.Repo.ListActive(ctx, scope)
	if err != nil {
		return summary, fmt.Errorf("listing active subscriptions: %w", err)
	}
	targets := make([]Subscription, 0, len(active))
	for _, sub := range active {
		if sub.IsActive && sub.Subscribes(event) {
			targets = append(targets, sub)
		}
	}
	if len(targets) == 0 {
		return summary, nil
	}

	deliveries := make([]Delivery, len(targets))
	var wg conc.WaitGroup
	for i, sub := range targets {
		wg.Go(func() {
			deliveries[i] = s.deliver(ctx, sub, event, body, 1)
		})
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		s.logger.Error().Str("event", event).Str("panic", recovered.String()).Msg("webhook delivery panicked")
	}

	for _, d := range deliveries {
		if d.ID == "" {
			summary.Failed++
			continue
		}
		summary.Deliveries = append(summary.Deliveries, d)
		if d.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	summary.Attempted = len(targets)
	return summary, nil
}

// Publish dispatches in the background; producers never wait on or see delivery failures
func (s *Service) Publish(scope Scope, event string, data any) {
	ctx := context.Background()
	go func() {
		summary, err := s.Dispatch(ctx, scope, event, data)
		if err != nil {
			s.logger.Error().Err(err).Str("event", event).Msg("publishing webhook event")
			return
		}
		s.logger.Debug().
			Str("event", event).
			Int("attempted", summary.Attempted).
			Int("succeeded", summary.Succeeded).
			Int("failed", summary.Failed).
			Msg("webhook event published")
	}()
}

// Test sends a webhook.test event to one subscription and returns the raw outcome.
// The subscription's failure count is not touched and no delivery row is written.
func (s *Service) Test(ctx context.Context, scope Scope, id string) (Outcome, error) {
	sub, err := s.Get(ctx, scope, id)
	if err != nil {
		return Outcome{}, err
	}

	env, err := payload.New(TestEvent, map[string]string{
		"message":   "This is a test webhook delivery",
		"webhookId": sub.ID,
	}, s.clock.Now())
	if err != nil {
		return Outcome{}, fmt.Errorf("building test payload: %w", err)
	}
	body, err := env.Bytes()
	if err != nil {
		return Outcome{}, fmt.Errorf("serializing payload: %w", err)
	}

	outcome := s.Sender.Send(ctx, s.request(sub, uuid.New().String(), TestEvent, body))
	s.logger.Info().
		Str("webhook_id", sub.ID).
		Int("status_code", outcome.StatusCode).
		Bool("success", outcome.Success).
		Msg("webhook test delivery")
	return outcome, nil
}

/* Redeliver re-sends the exact payload of a stored delivery as a new attempt.
 * The body is unchanged, so receivers can deduplicate on it; the delivery id and timestamp header are new.
 * Deleted or disabled subscriptions are skipped without error.
 */
func (s *Service) Redeliver(ctx context.Context, deliveryID string, attempt int) error {
	prev, err := s.Repo.GetDelivery(ctx, deliveryID)
	if err != nil {
		return fmt.Errorf("getting delivery: %w", err)
	}
	sub, err := s.Repo.GetSubscription(ctx, prev.WebhookID)
	if errors.Is(err, ErrNotFound) {
		s.logger.Info().Str("delivery_id", deliveryID).Msg("subscription gone, skipping redelivery")
		return nil
	}
	if err != nil {
		return fmt.Errorf("getting subscription: %w", err)
	}
	if !sub.IsActive {
		s.logger.Info().Str("webhook_id", sub.ID).Msg("subscription disabled, skipping redelivery")
		return nil
	}

	s.deliver(ctx, sub, prev.Event, prev.Payload, attempt)
	return nil
}

// deliver performs one attempt for one subscription with full bookkeeping
func (s *Service) deliver(ctx context.Context, sub Subscription, event string, body []byte, attempt int) Delivery {
	id := uuid.New().String()
	outcome := s.Sender.Send(ctx, s.request(sub, id, event, body))
	now := s.clock.Now()

	log := s.logger.With().
		Str("webhook_id", sub.ID).
		Str("delivery_id", id).
		Str("event", event).
		Int("attempt", attempt).
		Int("status_code", outcome.StatusCode).
		Dur("duration", outcome.Duration).
		Logger()

	active := true
	if outcome.Success {
		if err := s.Repo.RecordSuccess(ctx, sub.ID, outcome.StatusCode, now); err != nil {
			log.Error().Err(err).Msg("recording webhook success")
		}
		log.Info().Msg("webhook delivered")
	} else {
		count, stillActive, err := s.Repo.RecordFailure(ctx, sub.ID, outcome.StatusCode, now, MaxConsecutiveFailures)
		if err != nil {
			log.Error().Err(err).Msg("recording webhook failure")
		}
		active = stillActive || err != nil
		ev := log.Warn().Int("failure_count", count)
		if outcome.Err != nil {
			ev = ev.AnErr("cause", outcome.Err)
		}
		ev.Msg("webhook delivery failed")
		if err == nil && !stillActive {
			log.Warn().Int("failure_count", count).Msg("webhook subscription disabled after consecutive failures")
		}
	}

	delivery := Delivery{
		ID:         id,
		WebhookID:  sub.ID,
		Event:      event,
		Payload:    body,
		StatusCode: outcome.StatusCode,
		Response:   Truncate(outcome.Response, ResponseLimit),
		Duration:   outcome.Duration,
		Success:    outcome.Success,
		Attempts:   attempt,
		CreatedAt:  now,
	}
	if err := s.Repo.InsertDelivery(ctx, delivery); err != nil {
		log.Error().Err(err).Msg("recording webhook delivery")
	}
	if s.recorder != nil {
		s.recorder.RecordWebhookDelivery(ctx, event, delivery.Status(), outcome.Duration)
	}

	if !outcome.Success && active {
		s.scheduleRedelivery(ctx, delivery)
	}
	return delivery
}

func (s *Service) scheduleRedelivery(ctx context.Context, d Delivery) {
	if s.retry == nil || d.Attempts > s.maxRedelivery {
		return
	}
	delay := s.retryBaseDelay << (d.Attempts - 1)
	if err := s.retry.ScheduleRedelivery(ctx, d.ID, d.Attempts+1, delay); err != nil {
		s.logger.Error().Err(err).Str("delivery_id", d.ID).Msg("scheduling webhook redelivery")
		return
	}
	s.logger.Debug().Str("delivery_id", d.ID).Int("next_attempt", d.Attempts+1).Dur("delay", delay).Msg("webhook redelivery scheduled")
}

func (s *Service) request(sub Subscription, deliveryID, event string, body []byte) Request {
	return Request{
		URL: sub.URL,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"User-Agent":    UserAgent,
			HeaderID:        deliveryID,
			HeaderEvent:     event,
			HeaderSignature: signature.Header(sub.Secret, body),
			HeaderTimestamp: s.clock.Now().UTC().Format(payload.TimestampFormat),
		},
		Body: body,
	}
}

// Truncate cuts s to at most n characters. Invalid UTF-8 is replaced and NUL bytes are
// dropped so the result can be stored in a text column.
func Truncate(s string, n int) string {
	s = strings.ReplaceAll(strings.ToValidUTF8(s, "\uFFFD"), "\x00", "")
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
