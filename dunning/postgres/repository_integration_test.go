//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go2gg/edge/dunning"
	"github.com/go2gg/edge/dunning/postgres"
	"github.com/go2gg/edge/internal/postgres/postgrestest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var failedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func record(id, invoice string) dunning.Record {
	return dunning.Record{
		ID:             id,
		OrganizationID: "org_a",
		InvoiceID:      invoice,
		Email:          "billing@example.com",
		Amount:         4900,
		Currency:       "usd",
		FailedAt:       failedAt,
		CreatedAt:      failedAt,
	}
}

func TestRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pg, cleanup := postgrestest.Setup(t, ctx)
	defer cleanup()

	repo := postgres.NewRepository(pg.Pool)
	reset := func(t *testing.T) {
		postgrestest.Truncate(t, ctx, pg.Pool, "dunning_records")
	}

	t.Run("success - create is idempotent per invoice", func(t *testing.T) {
		reset(t)
		first, created, err := repo.Create(ctx, record("d_1", "in_1"))
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, "d_1", first.ID)
		assert.Nil(t, first.LastReminderSentAt)

		again, created, err := repo.Create(ctx, record("d_2", "in_1"))
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "d_1", again.ID)
	})

	t.Run("success - reminder CAS", func(t *testing.T) {
		reset(t)
		_, _, err := repo.Create(ctx, record("d_1", "in_1"))
		require.NoError(t, err)

		at := failedAt.Add(time.Minute)
		require.NoError(t, repo.MarkReminderSent(ctx, "d_1", 0, at))
		assert.ErrorIs(t, repo.MarkReminderSent(ctx, "d_1", 0, at), dunning.ErrReminderAlreadySent)
		require.NoError(t, repo.MarkReminderSent(ctx, "d_1", 3, at))
		assert.ErrorIs(t, repo.MarkReminderSent(ctx, "d_1", 3, at), dunning.ErrReminderAlreadySent)
		assert.ErrorIs(t, repo.MarkReminderSent(ctx, "missing", 3, at), dunning.ErrNotFound)

		got, err := repo.Get(ctx, "d_1")
		require.NoError(t, err)
		assert.Equal(t, 3, got.LastReminderSent)
		require.NotNil(t, got.LastReminderSentAt)
		assert.True(t, at.Equal(*got.LastReminderSentAt))
	})

	t.Run("success - concurrent CAS has one winner", func(t *testing.T) {
		reset(t)
		_, _, err := repo.Create(ctx, record("d_1", "in_1"))
		require.NoError(t, err)

		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := repo.MarkReminderSent(ctx, "d_1", 3, failedAt)
				if err == nil {
					wins.Add(1)
					return
				}
				assert.True(t, errors.Is(err, dunning.ErrReminderAlreadySent))
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("success - restore puts the previous step back", func(t *testing.T) {
		reset(t)
		_, _, err := repo.Create(ctx, record("d_1", "in_1"))
		require.NoError(t, err)
		require.NoError(t, repo.MarkReminderSent(ctx, "d_1", 0, failedAt))
		require.NoError(t, repo.RestoreReminder(ctx, "d_1", 0, 0, nil))

		got, err := repo.Get(ctx, "d_1")
		require.NoError(t, err)
		assert.Nil(t, got.LastReminderSentAt)
		assert.ErrorIs(t, repo.RestoreReminder(ctx, "d_1", 3, 0, nil), dunning.ErrReminderAlreadySent)
	})

	t.Run("success - open and expired scans", func(t *testing.T) {
		reset(t)
		_, _, err := repo.Create(ctx, record("d_1", "in_1"))
		require.NoError(t, err)
		newer := record("d_2", "in_2")
		newer.FailedAt = failedAt.Add(5 * 24 * time.Hour)
		_, _, err = repo.Create(ctx, newer)
		require.NoError(t, err)
		resolved := record("d_3", "in_3")
		_, _, err = repo.Create(ctx, resolved)
		require.NoError(t, err)
		require.NoError(t, repo.Resolve(ctx, "in_3", failedAt))

		open, err := repo.ListOpen(ctx, failedAt.Add(5*24*time.Hour))
		require.NoError(t, err)
		require.Len(t, open, 2)
		assert.Equal(t, "d_1", open[0].ID)

		expired, err := repo.ListExpired(ctx, failedAt.Add(time.Second))
		require.NoError(t, err)
		require.Len(t, expired, 1)
		assert.Equal(t, "d_1", expired[0].ID)

		expired, err = repo.ListExpired(ctx, failedAt)
		require.NoError(t, err)
		assert.Empty(t, expired)
	})

	t.Run("success - resolve is idempotent and ignores unknown invoices", func(t *testing.T) {
		reset(t)
		_, _, err := repo.Create(ctx, record("d_1", "in_1"))
		require.NoError(t, err)

		require.NoError(t, repo.Resolve(ctx, "in_1", failedAt))
		require.NoError(t, repo.Resolve(ctx, "in_1", failedAt.Add(time.Hour)))
		require.NoError(t, repo.Resolve(ctx, "in_unknown", failedAt))

		got, err := repo.GetByInvoice(ctx, "in_1")
		require.NoError(t, err)
		assert.True(t, got.Resolved)
		require.NotNil(t, got.ResolvedAt)
		assert.True(t, failedAt.Equal(*got.ResolvedAt))
		assert.ErrorIs(t, repo.MarkReminderSent(ctx, "d_1", 3, failedAt), dunning.ErrClosed)
	})

	t.Run("success - cancel is terminal and exclusive with resolve", func(t *testing.T) {
		reset(t)
		_, _, err := repo.Create(ctx, record("d_1", "in_1"))
		require.NoError(t, err)
		_, _, err = repo.Create(ctx, record("d_2", "in_2"))
		require.NoError(t, err)

		require.NoError(t, repo.MarkCanceled(ctx, "d_1", failedAt))
		require.NoError(t, repo.MarkCanceled(ctx, "d_1", failedAt))
		require.NoError(t, repo.Resolve(ctx, "in_1", failedAt))
		got, err := repo.Get(ctx, "d_1")
		require.NoError(t, err)
		assert.False(t, got.Resolved)
		assert.NotNil(t, got.CanceledAt)

		require.NoError(t, repo.Resolve(ctx, "in_2", failedAt))
		assert.ErrorIs(t, repo.MarkCanceled(ctx, "d_2", failedAt), dunning.ErrClosed)
		assert.ErrorIs(t, repo.MarkCanceled(ctx, "missing", failedAt), dunning.ErrNotFound)
	})
}
