package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/go2gg/edge/internal/clock"
	"github.com/go2gg/edge/internal/jobs"
	"github.com/go2gg/edge/internal/workers"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
	"github.com/rs/zerolog"
)

// Config sizes the queues and sets the dunning cadence
type Config struct {
	DunningScanInterval time.Duration
	DunningWorkers      int
	WebhookWorkers      int
}

// Manager owns the River client that runs dunning scans and webhook redeliveries
type Manager struct {
	client *river.Client[pgx.Tx]
	clock  clock.Clock
	logger zerolog.Logger
}

// NewManager registers the workers and the periodic dunning scan on a River client
func NewManager(pool *pgxpool.Pool, cfg Config, runner workers.DunningRunner, webhooks workers.Redeliverer, logger zerolog.Logger) (*Manager, error) {
	if cfg.DunningScanInterval <= 0 {
		cfg.DunningScanInterval = 15 * time.Minute
	}
	if cfg.DunningWorkers <= 0 {
		cfg.DunningWorkers = 1
	}
	if cfg.WebhookWorkers <= 0 {
		cfg.WebhookWorkers = 8
	}

	riverWorkers := river.NewWorkers()
	river.AddWorker(riverWorkers, workers.NewDunningScanWorker(runner, logger))
	river.AddWorker(riverWorkers, workers.NewWebhookRedeliveryWorker(webhooks, logger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			jobs.QueueDunning:  {MaxWorkers: cfg.DunningWorkers},
			jobs.QueueWebhooks: {MaxWorkers: cfg.WebhookWorkers},
		},
		Workers: riverWorkers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(cfg.DunningScanInterval),
				func() (river.JobArgs, *river.InsertOpts) {
					return jobs.DunningScanArgs{Reason: "periodic"}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return &Manager{client: client, clock: clock.System(), logger: logger}, nil
}

// NewInsertOnly creates a manager that can enqueue jobs but does not work them; used by the CLI
func NewInsertOnly(pool *pgxpool.Pool, logger zerolog.Logger) (*Manager, error) {
	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}
	return &Manager{client: client, clock: clock.System(), logger: logger}, nil
}

// Start starts the queue processing
func (m *Manager) Start(ctx context.Context) error {
	if err := m.client.Start(ctx); err != nil {
		return fmt.Errorf("starting river client: %w", err)
	}
	m.logger.Info().Msg("job queue started")
	return nil
}

// Stop waits for running jobs to finish or ctx to end
func (m *Manager) Stop(ctx context.Context) error {
	if err := m.client.Stop(ctx); err != nil {
		return fmt.Errorf("stopping river client: %w", err)
	}
	m.logger.Info().Msg("job queue stopped")
	return nil
}

// ScheduleRedelivery implements webhook.RetryScheduler
func (m *Manager) ScheduleRedelivery(ctx context.Context, deliveryID string, attempt int, delay time.Duration) error {
	_, err := m.insert(ctx, jobs.WebhookRedeliveryArgs{DeliveryID: deliveryID, Attempt: attempt}, &river.InsertOpts{
		ScheduledAt: m.clock.Now().Add(delay),
	})
	return err
}

// EnqueueDunningScan asks for a scan now. A scan already queued absorbs the request.
func (m *Manager) EnqueueDunningScan(ctx context.Context, reason string) (bool, error) {
	res, err := m.insert(ctx, jobs.DunningScanArgs{Reason: reason}, nil)
	if err != nil {
		return false, err
	}
	return !res.UniqueSkippedAsDuplicate, nil
}

func (m *Manager) insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error) {
	res, err := m.client.Insert(ctx, args, opts)
	if err != nil {
		return nil, fmt.Errorf("inserting %s job: %w", args.Kind(), err)
	}
	return res, nil
}
