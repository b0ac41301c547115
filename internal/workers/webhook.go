package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/go2gg/edge/internal/jobs"
	"github.com/go2gg/edge/webhook"
	"github.com/riverqueue/river"
	"github.com/rs/zerolog"
)

// Redeliverer re-sends a stored delivery as a new attempt
type Redeliverer interface {
	Redeliver(ctx context.Context, deliveryID string, attempt int) error
}

// WebhookRedeliveryWorker handles delayed webhook redelivery jobs
type WebhookRedeliveryWorker struct {
	river.WorkerDefaults[jobs.WebhookRedeliveryArgs]
	webhooks Redeliverer
	logger   zerolog.Logger
}

func NewWebhookRedeliveryWorker(webhooks Redeliverer, logger zerolog.Logger) *WebhookRedeliveryWorker {
	return &WebhookRedeliveryWorker{webhooks: webhooks, logger: logger}
}

/* Work re-invokes the single-attempt delivery. The outcome of the HTTP call is bookkeeping,
 * not a job failure; only a missing source delivery or a storage error fails the job.
 */
func (w *WebhookRedeliveryWorker) Work(ctx context.Context, job *river.Job[jobs.WebhookRedeliveryArgs]) error {
	err := w.webhooks.Redeliver(ctx, job.Args.DeliveryID, job.Args.Attempt)
	if errors.Is(err, webhook.ErrNotFound) {
		w.logger.Warn().
			Str("delivery_id", job.Args.DeliveryID).
			Msg("redelivery source not found, dropping job")
		return river.JobCancel(err)
	}
	if err != nil {
		return fmt.Errorf("redelivering %s: %w", job.Args.DeliveryID, err)
	}
	return nil
}
