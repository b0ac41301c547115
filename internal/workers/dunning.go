package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/go2gg/edge/dunning"
	"github.com/go2gg/edge/internal/jobs"
	"github.com/riverqueue/river"
	"github.com/rs/zerolog"
)

// DunningRunner runs one dunning scan
type DunningRunner interface {
	Run(ctx context.Context) (dunning.RunSummary, error)
}

// DunningScanWorker handles dunning scan jobs
type DunningScanWorker struct {
	river.WorkerDefaults[jobs.DunningScanArgs]
	runner DunningRunner
	logger zerolog.Logger
}

func NewDunningScanWorker(runner DunningRunner, logger zerolog.Logger) *DunningScanWorker {
	return &DunningScanWorker{runner: runner, logger: logger}
}

// Work runs the scan. A returned error makes River retry the job with its own backoff.
func (w *DunningScanWorker) Work(ctx context.Context, job *river.Job[jobs.DunningScanArgs]) error {
	summary, err := w.runner.Run(ctx)
	if err != nil {
		w.logger.Error().Err(err).
			Int64("job_id", job.ID).
			Int("attempt", job.Attempt).
			Msg("dunning scan failed")
		return fmt.Errorf("running dunning scan: %w", err)
	}

	w.logger.Debug().
		Int64("job_id", job.ID).
		Str("reason", job.Args.Reason).
		Int("reminders_sent", summary.RemindersSent).
		Int("canceled", summary.Canceled).
		Msg("dunning scan job done")
	return nil
}

func (w *DunningScanWorker) Timeout(*river.Job[jobs.DunningScanArgs]) time.Duration {
	return 5 * time.Minute
}
