package metrics

import (
	"context"
	"time"
)

// Snapshot is the point-in-time state reported by the gauges
type Snapshot struct {
	// RateLimitWindows is the number of keys with a live sliding window
	RateLimitWindows int64 `json:"rate_limit_windows"`

	ActiveSubscriptions   int64 `json:"active_subscriptions"`
	DisabledSubscriptions int64 `json:"disabled_subscriptions"`

	// OpenDunningRecords counts records neither resolved nor canceled
	OpenDunningRecords int64 `json:"open_dunning_records"`

	Timestamp time.Time `json:"timestamp"`
}

// Collector defines the interface for collecting state gauges
type Collector interface {
	Collect(ctx context.Context) (Snapshot, error)
}

// WindowCounter reports live rate limit windows
type WindowCounter interface {
	WindowCount(ctx context.Context) (int64, error)
}

// StoreCounter reports persisted webhook and dunning state
type StoreCounter interface {
	SubscriptionCounts(ctx context.Context) (active int64, disabled int64, err error)
	OpenDunningCount(ctx context.Context) (int64, error)
}
