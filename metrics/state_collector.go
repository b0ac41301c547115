package metrics

import (
	"context"
	"fmt"

	"github.com/go2gg/edge/internal/clock"
)

// StateCollector implements Collector over the rate limit backend and the database.
// Either source may be nil; its gauges then read 0.
type StateCollector struct {
	windows WindowCounter
	store   StoreCounter
	clock   clock.Clock
}

// NewStateCollector creates a collector
func NewStateCollector(windows WindowCounter, store StoreCounter, c clock.Clock) *StateCollector {
	if c == nil {
		c = clock.System()
	}
	return &StateCollector{windows: windows, store: store, clock: c}
}

// Collect gathers every gauge
func (c *StateCollector) Collect(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Timestamp: c.clock.Now()}

	if c.windows != nil {
		n, err := c.windows.WindowCount(ctx)
		if err != nil {
			return Snapshot{}, fmt.Errorf("getting rate limit windows: %w", err)
		}
		snap.RateLimitWindows = n
	}

	if c.store != nil {
		active, disabled, err := c.store.SubscriptionCounts(ctx)
		if err != nil {
			return Snapshot{}, fmt.Errorf("getting subscription counts: %w", err)
		}
		snap.ActiveSubscriptions = active
		snap.DisabledSubscriptions = disabled

		open, err := c.store.OpenDunningCount(ctx)
		if err != nil {
			return Snapshot{}, fmt.Errorf("getting open dunning count: %w", err)
		}
		snap.OpenDunningRecords = open
	}

	return snap, nil
}
