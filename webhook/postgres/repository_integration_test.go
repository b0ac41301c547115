//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go2gg/edge/internal/postgres/postgrestest"
	"github.com/go2gg/edge/webhook"
	"github.com/go2gg/edge/webhook/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func subscription(id string, scope webhook.Scope, events ...string) webhook.Subscription {
	return webhook.Subscription{
		ID:             id,
		UserID:         scope.UserID,
		OrganizationID: scope.OrganizationID,
		URL:            "https://example.com/" + id,
		Secret:         "whsec_" + id,
		Events:         events,
		IsActive:       true,
		CreatedAt:      base,
		UpdatedAt:      base,
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
		postgrestest.Truncate(t, ctx, pg.Pool, "webhook_subscriptions", "webhook_deliveries")
	}

	t.Run("success - create and get subscription", func(t *testing.T) {
		reset(t)
		sub := subscription("wh_1", webhook.Scope{UserID: "user_a"}, "invoice.paid", "*")
		require.NoError(t, repo.CreateSubscription(ctx, sub))

		got, err := repo.GetSubscription(ctx, "wh_1")
		require.NoError(t, err)
		assert.Equal(t, sub.URL, got.URL)
		assert.Equal(t, sub.Secret, got.Secret)
		assert.Equal(t, []string{"invoice.paid", "*"}, got.Events)
		assert.Empty(t, got.OrganizationID)
		assert.True(t, got.IsActive)
		assert.Nil(t, got.LastTriggeredAt)
	})

	t.Run("error - unknown subscription", func(t *testing.T) {
		reset(t)
		_, err := repo.GetSubscription(ctx, "missing")
		assert.ErrorIs(t, err, webhook.ErrNotFound)
		assert.ErrorIs(t, repo.DeleteSubscription(ctx, "missing"), webhook.ErrNotFound)
		_, _, err = repo.RecordFailure(ctx, "missing", 500, base, 10)
		assert.ErrorIs(t, err, webhook.ErrNotFound)
	})

	t.Run("success - listing respects scope and activity", func(t *testing.T) {
		reset(t)
		user := webhook.Scope{UserID: "user_a"}
		org := webhook.Scope{UserID: "user_a", OrganizationID: "org_a"}
		require.NoError(t, repo.CreateSubscription(ctx, subscription("wh_user", user, "*")))
		require.NoError(t, repo.CreateSubscription(ctx, subscription("wh_org", org, "*")))
		inactive := subscription("wh_off", org, "*")
		inactive.IsActive = false
		require.NoError(t, repo.CreateSubscription(ctx, inactive))

		userSubs, err := repo.ListSubscriptions(ctx, user)
		require.NoError(t, err)
		require.Len(t, userSubs, 1)
		assert.Equal(t, "wh_user", userSubs[0].ID)

		orgSubs, err := repo.ListSubscriptions(ctx, org)
		require.NoError(t, err)
		assert.Len(t, orgSubs, 2)

		active, err := repo.ListActive(ctx, org)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, "wh_org", active[0].ID)
	})

	t.Run("success - failure threshold disables and success resets", func(t *testing.T) {
		reset(t)
		require.NoError(t, repo.CreateSubscription(ctx, subscription("wh_1", webhook.Scope{UserID: "u"}, "*")))

		for i := 1; i <= 2; i++ {
			count, active, err := repo.RecordFailure(ctx, "wh_1", 500, base, 3)
			require.NoError(t, err)
			assert.Equal(t, i, count)
			assert.True(t, active)
		}
		require.NoError(t, repo.RecordSuccess(ctx, "wh_1", 200, base))
		got, err := repo.GetSubscription(ctx, "wh_1")
		require.NoError(t, err)
		assert.Equal(t, 0, got.FailureCount)
		assert.Equal(t, 200, got.LastStatus)
		require.NotNil(t, got.LastTriggeredAt)

		for i := 0; i < 3; i++ {
			_, _, err = repo.RecordFailure(ctx, "wh_1", 0, base, 3)
			require.NoError(t, err)
		}
		got, err = repo.GetSubscription(ctx, "wh_1")
		require.NoError(t, err)
		assert.False(t, got.IsActive)
		assert.Equal(t, 3, got.FailureCount)
		assert.Equal(t, 0, got.LastStatus)

		require.NoError(t, repo.Reactivate(ctx, "wh_1", base.Add(time.Hour)))
		got, err = repo.GetSubscription(ctx, "wh_1")
		require.NoError(t, err)
		assert.True(t, got.IsActive)
		assert.Equal(t, 0, got.FailureCount)
	})

	t.Run("success - concurrent failures never lose an increment", func(t *testing.T) {
		reset(t)
		require.NoError(t, repo.CreateSubscription(ctx, subscription("wh_1", webhook.Scope{UserID: "u"}, "*")))

		var wg sync.WaitGroup
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := repo.RecordFailure(ctx, "wh_1", 503, base, webhook.MaxConsecutiveFailures)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := repo.GetSubscription(ctx, "wh_1")
		require.NoError(t, err)
		assert.Equal(t, 25, got.FailureCount)
		assert.False(t, got.IsActive)
	})

	t.Run("success - rotate secret", func(t *testing.T) {
		reset(t)
		require.NoError(t, repo.CreateSubscription(ctx, subscription("wh_1", webhook.Scope{UserID: "u"}, "*")))
		require.NoError(t, repo.UpdateSecret(ctx, "wh_1", "whsec_new", base.Add(time.Minute)))
		got, err := repo.GetSubscription(ctx, "wh_1")
		require.NoError(t, err)
		assert.Equal(t, "whsec_new", got.Secret)
	})

	t.Run("success - delivery log filters and orders newest first", func(t *testing.T) {
		reset(t)
		for i, success := range []bool{true, false, true} {
			d := webhook.Delivery{
				ID:         "del_" + string(rune('a'+i)),
				WebhookID:  "wh_1",
				Event:      "invoice.paid",
				Payload:    []byte(`{"event":"invoice.paid"}`),
				StatusCode: 200,
				Duration:   120 * time.Millisecond,
				Success:    success,
				Attempts:   1,
				CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			}
			require.NoError(t, repo.InsertDelivery(ctx, d))
		}

		all, err := repo.ListDeliveries(ctx, "wh_1", webhook.DeliveryFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "del_c", all[0].ID)
		assert.Equal(t, 120*time.Millisecond, all[0].Duration)

		failed, err := repo.ListDeliveries(ctx, "wh_1", webhook.DeliveryFilter{Status: webhook.Failed})
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, "del_b", failed[0].ID)

		limited, err := repo.ListDeliveries(ctx, "wh_1", webhook.DeliveryFilter{Status: webhook.Succeeded, Limit: 1})
		require.NoError(t, err)
		require.Len(t, limited, 1)
		assert.Equal(t, "del_c", limited[0].ID)

		got, err := repo.GetDelivery(ctx, "del_b")
		require.NoError(t, err)
		assert.Equal(t, `{"event":"invoice.paid"}`, string(got.Payload))

		_, err = repo.GetDelivery(ctx, "missing")
		assert.ErrorIs(t, err, webhook.ErrNotFound)
	})

	t.Run("success - non utf8 response is stored after truncation", func(t *testing.T) {
		reset(t)
		d := webhook.Delivery{
			ID:         "del_bin",
			WebhookID:  "wh_1",
			Event:      "invoice.paid",
			Payload:    []byte(`{"event":"invoice.paid"}`),
			StatusCode: 502,
			Response:   webhook.Truncate("caf\xe9 \x00 gateway error", webhook.ResponseLimit),
			Attempts:   1,
			CreatedAt:  base,
		}
		require.NoError(t, repo.InsertDelivery(ctx, d))

		got, err := repo.GetDelivery(ctx, "del_bin")
		require.NoError(t, err)
		assert.Equal(t, "caf\uFFFD  gateway error", got.Response)
	})
}
