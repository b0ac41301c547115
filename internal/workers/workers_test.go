package workers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go2gg/edge/dunning"
	"github.com/go2gg/edge/internal/jobs"
	"github.com/go2gg/edge/internal/workers"
	"github.com/go2gg/edge/webhook"
	"github.com/go2gg/edge/webhook/mocks"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	summary dunning.RunSummary
	err     error
	calls   int
}

func (f *fakeRunner) Run(context.Context) (dunning.RunSummary, error) {
	f.calls++
	return f.summary, f.err
}

func TestDunningScanWorker(t *testing.T) {
	ctx := context.Background()
	job := &river.Job[jobs.DunningScanArgs]{JobRow: &rivertype.JobRow{ID: 7, Attempt: 1}, Args: jobs.DunningScanArgs{Reason: "periodic"}}

	t.Run("success - runs one scan", func(t *testing.T) {
		runner := &fakeRunner{summary: dunning.RunSummary{RemindersSent: 2}}
		w := workers.NewDunningScanWorker(runner, zerolog.Nop())
		require.NoError(t, w.Work(ctx, job))
		assert.Equal(t, 1, runner.calls)
	})

	t.Run("error - persistence failure fails the job", func(t *testing.T) {
		runner := &fakeRunner{err: errors.New("db down")}
		w := workers.NewDunningScanWorker(runner, zerolog.Nop())
		err := w.Work(ctx, job)
		assert.ErrorContains(t, err, "db down")
	})
}

func TestWebhookRedeliveryWorker(t *testing.T) {
	ctx := context.Background()
	job := &river.Job[jobs.WebhookRedeliveryArgs]{
		JobRow: &rivertype.JobRow{ID: 9, Attempt: 1},
		Args:   jobs.WebhookRedeliveryArgs{DeliveryID: "del_1", Attempt: 2},
	}

	t.Run("success - redelivers with the job attempt", func(t *testing.T) {
		uc := mocks.NewUseCase(t)
		uc.On("Redeliver", mock.Anything, "del_1", 2).Return(nil).Once()
		w := workers.NewWebhookRedeliveryWorker(uc, zerolog.Nop())
		assert.NoError(t, w.Work(ctx, job))
	})

	t.Run("error - missing delivery cancels the job", func(t *testing.T) {
		uc := mocks.NewUseCase(t)
		uc.On("Redeliver", mock.Anything, "del_1", 2).Return(webhook.ErrNotFound).Once()
		w := workers.NewWebhookRedeliveryWorker(uc, zerolog.Nop())

		err := w.Work(ctx, job)
		require.Error(t, err)
		var cancel *rivertype.JobCancelError
		assert.ErrorAs(t, err, &cancel)
	})

	t.Run("error - storage failure is retried", func(t *testing.T) {
		uc := mocks.NewUseCase(t)
		uc.On("Redeliver", mock.Anything, "del_1", 2).Return(errors.New("db down")).Once()
		w := workers.NewWebhookRedeliveryWorker(uc, zerolog.Nop())

		err := w.Work(ctx, job)
		assert.ErrorContains(t, err, "db down")
		var cancel *rivertype.JobCancelError
		assert.False(t, errors.As(err, &cancel))
	})
}
