//go:build integration

package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/go2gg/edge/dunning"
	"github.com/go2gg/edge/internal/postgres"
	"github.com/go2gg/edge/internal/postgres/postgrestest"
	"github.com/go2gg/edge/internal/queue"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopRunner struct{}

func (noopRunner) Run(context.Context) (dunning.RunSummary, error) { return dunning.RunSummary{}, nil }

type noopRedeliverer struct{}

func (noopRedeliverer) Redeliver(context.Context, string, int) error { return nil }

func TestManagerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pg, cleanup := postgrestest.Setup(t, ctx)
	defer cleanup()
	require.NoError(t, postgres.MigrateRiver(ctx, pg.Pool, zerolog.Nop()))

	m, err := queue.NewManager(pg.Pool, queue.Config{DunningScanInterval: time.Hour}, noopRunner{}, noopRedeliverer{}, zerolog.Nop())
	require.NoError(t, err)

	t.Run("success - redelivery is scheduled in the future", func(t *testing.T) {
		require.NoError(t, m.ScheduleRedelivery(ctx, "del_1", 2, 2*time.Minute))

		var state string
		var scheduledAt time.Time
		err := pg.Pool.QueryRow(ctx,
			`SELECT state, scheduled_at FROM river_job WHERE kind = 'webhook_redelivery' AND args->>'delivery_id' = 'del_1'`,
		).Scan(&state, &scheduledAt)
		require.NoError(t, err)
		assert.Equal(t, "scheduled", state)
		assert.True(t, scheduledAt.After(time.Now().Add(time.Minute)))
	})

	t.Run("success - manual scans collapse into one queued job", func(t *testing.T) {
		inserted, err := m.EnqueueDunningScan(ctx, "manual")
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = m.EnqueueDunningScan(ctx, "manual")
		require.NoError(t, err)
		assert.False(t, inserted)
	})
}
