package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

/* A sliding-window limiter keeps, per key, the timestamps of the requests it admitted
 * during the trailing window. A request is admitted while fewer than Limit timestamps remain
 * after dropping everything that fell out of the window.
 */

var ErrInvalidPolicy = errors.New("invalid rate limit policy")

// Policy is a {limit, window} pair applied to one key
type Policy struct {
	Limit  int
	Window time.Duration
}

// Validate checks the policy can be enforced
func (p Policy) Validate() error {
	if p.Limit < 1 {
		return fmt.Errorf("%w: limit must be at least 1 (got %d)", ErrInvalidPolicy, p.Limit)
	}
	if p.Window < time.Second {
		return fmt.Errorf("%w: window must be at least 1s (got %s)", ErrInvalidPolicy, p.Window)
	}
	return nil
}

// WindowSeconds returns the window in whole seconds, as used on the wire
func (p Policy) WindowSeconds() int {
	return int(p.Window / time.Second)
}

// Result is the outcome of one check
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"-"`
	Remaining int   `json:"remaining"`
	ResetAt   int64 `json:"resetAt"` // unix seconds
}

// RetryAfter returns the number of seconds a rejected caller should wait, never less than 1
func (r Result) RetryAfter(now time.Time) int64 {
	wait := r.ResetAt - now.Unix()
	if wait < 1 {
		return 1
	}
	return wait
}

/* Limiter is implemented by every backend. Implementations must make the
 * trim/check/append sequence for one key atomic with respect to other checks on the same key.
 */
type Limiter interface {
	Check(ctx context.Context, key string, policy Policy) (Result, error)
	Reset(ctx context.Context, key string) error
}

// Slide applies one check to an ordered timestamp sequence (milliseconds) and returns the
// sequence to persist together with the decision. stamps must be in chronological order.
// ResetAt is when the oldest stamp leaves the window, ceil((oldest+window)/1000), on both
// the admitted and the rejected branch.
func Slide(stamps []int64, nowMs int64, policy Policy) ([]int64, Result) {
	windowMs := policy.Window.Milliseconds()
	windowStart := nowMs - windowMs

	i := 0
	for i < len(stamps) && stamps[i] <= windowStart {
		i++
	}
	stamps = stamps[i:]

	result := Result{Limit: policy.Limit}
	if len(stamps) < policy.Limit {
		stamps = append(stamps, nowMs)
		result.Allowed = true
		result.Remaining = policy.Limit - len(stamps)
	}
	result.ResetAt = ceilSeconds(stamps[0] + windowMs)
	return stamps, result
}

func ceilSeconds(ms int64) int64 {
	if ms <= 0 {
		return ms / 1000
	}
	return (ms + 999) / 1000
}
