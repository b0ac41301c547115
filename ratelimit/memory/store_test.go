package memory_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go2gg/edge/internal/clock"
	"github.com/go2gg/edge/ratelimit"
	"github.com/go2gg/edge/ratelimit/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestStoreCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("success - limit admitted then rejected", func(t *testing.T) {
		fake := clock.NewFake(start)
		store := memory.NewStore(fake)
		policy := ratelimit.Policy{Limit: 5, Window: 60 * time.Second}

		for want := 4; want >= 0; want-- {
			res, err := store.Check(ctx, "ip:1.2.3.4", policy)
			require.NoError(t, err)
			assert.True(t, res.Allowed)
			assert.Equal(t, want, res.Remaining)
		}

		fake.Advance(time.Second)
		res, err := store.Check(ctx, "ip:1.2.3.4", policy)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)
		assert.Equal(t, start.Add(60*time.Second).Unix(), res.ResetAt)
	})

	t.Run("success - window slides", func(t *testing.T) {
		fake := clock.NewFake(start)
		store := memory.NewStore(fake)
		policy := ratelimit.Policy{Limit: 2, Window: 60 * time.Second}
		check := func(at time.Duration) bool {
			fake.Set(start.Add(at))
			res, err := store.Check(ctx, "user:42", policy)
			require.NoError(t, err)
			return res.Allowed
		}

		assert.True(t, check(0))
		assert.True(t, check(10*time.Second))
		assert.False(t, check(30*time.Second))
		assert.True(t, check(61*time.Second))
	})

	t.Run("success - keys are independent", func(t *testing.T) {
		store := memory.NewStore(clock.NewFake(start))
		policy := ratelimit.Policy{Limit: 1, Window: time.Minute}

		res, err := store.Check(ctx, "ip:a", policy)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		res, err = store.Check(ctx, "ip:b", policy)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		res, err = store.Check(ctx, "ip:a", policy)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
	})

	t.Run("success - concurrent checks never over-admit", func(t *testing.T) {
		store := memory.NewStore(clock.NewFake(start), memory.WithShards(4))
		policy := ratelimit.Policy{Limit: 10, Window: time.Minute}

		var admitted atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < 200; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := store.Check(ctx, "ip:hot", policy)
				if err == nil && res.Allowed {
					admitted.Add(1)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(10), admitted.Load())
	})

	t.Run("error - invalid policy", func(t *testing.T) {
		store := memory.NewStore(clock.NewFake(start))
		_, err := store.Check(ctx, "ip:a", ratelimit.Policy{Limit: 0, Window: time.Minute})
		assert.ErrorIs(t, err, ratelimit.ErrInvalidPolicy)
	})

	t.Run("error - canceled context", func(t *testing.T) {
		store := memory.NewStore(clock.NewFake(start))
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := store.Check(cctx, "ip:a", ratelimit.AuthPolicy())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStoreReset(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(clock.NewFake(start))
	policy := ratelimit.Policy{Limit: 1, Window: time.Hour}

	_, err := store.Check(ctx, "ip:a", policy)
	require.NoError(t, err)
	res, err := store.Check(ctx, "ip:a", policy)
	require.NoError(t, err)
	require.False(t, res.Allowed)

	require.NoError(t, store.Reset(ctx, "ip:a"))
	res, err = store.Check(ctx, "ip:a", policy)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	require.NoError(t, store.Reset(ctx, "ip:never-seen"))
}

func TestStoreSweep(t *testing.T) {
	ctx := context.Background()
	fake := clock.NewFake(start)
	store := memory.NewStore(fake)

	for i := 0; i < 20; i++ {
		_, err := store.Check(ctx, fmt.Sprintf("ip:10.0.0.%d", i), ratelimit.Policy{Limit: 3, Window: time.Minute})
		require.NoError(t, err)
	}
	_, err := store.Check(ctx, "user:long", ratelimit.Policy{Limit: 3, Window: time.Hour})
	require.NoError(t, err)
	require.Equal(t, 21, store.Len())

	fake.Advance(30 * time.Second)
	assert.Equal(t, 0, store.Sweep())

	fake.Advance(31 * time.Second)
	assert.Equal(t, 20, store.Sweep())
	assert.Equal(t, 1, store.Len())
}
