package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go2gg/edge/internal/clock"
	"github.com/go2gg/edge/ratelimit"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of ratelimit.Limiter
 * Each key is a sorted set of admitted requests scored by their millisecond timestamp.
 * Trim, count and append run inside one Lua script, which Redis executes atomically,
 * so concurrent checks from any number of API instances are serialized per key.
 */

const keyPrefix = "ratelimit" // Key naming: ratelimit:{key}

// KEYS[1] window key
// ARGV[1] now (ms), ARGV[2] window (ms), ARGV[3] limit, ARGV[4] unique member
var slideScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < limit then
	redis.call('ZADD', key, now, ARGV[4])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, window)

local remaining = 0
if allowed == 1 then
	remaining = limit - count
end
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {allowed, remaining, tonumber(oldest[2])}
`)

type Limiter struct {
	client *redis.Client
	clock  clock.Clock
}

// NewLimiter creates a limiter backed by an existing client
func NewLimiter(client *redis.Client, c clock.Clock) *Limiter {
	return &Limiter{client: client, clock: c}
}

// NewClient creates a Redis client and checks the connection
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}
	return client, nil
}

// Check applies the sliding window for key
func (l *Limiter) Check(ctx context.Context, key string, policy ratelimit.Policy) (ratelimit.Result, error) {
	if err := policy.Validate(); err != nil {
		return ratelimit.Result{}, err
	}

	nowMs := l.clock.Now().UnixMilli()
	windowMs := policy.Window.Milliseconds()
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()

	values, err := slideScript.Run(ctx, l.client,
		[]string{windowKey(key)},
		nowMs, windowMs, policy.Limit, member,
	).Int64Slice()
	if err != nil {
		return ratelimit.Result{}, fmt.Errorf("running sliding window script: %w", err)
	}
	if len(values) != 3 {
		return ratelimit.Result{}, fmt.Errorf("unexpected sliding window reply: %v", values)
	}

	oldest := values[2]
	return ratelimit.Result{
		Allowed:   values[0] == 1,
		Limit:     policy.Limit,
		Remaining: int(values[1]),
		ResetAt:   (oldest + windowMs + 999) / 1000,
	}, nil
}

// Reset deletes the window for key
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, windowKey(key)).Err(); err != nil {
		return fmt.Errorf("resetting window %s: %w", key, err)
	}
	return nil
}

// WindowCount counts live windows with SCAN; windows expire on their own after one idle window
func (l *Limiter) WindowCount(ctx context.Context) (int64, error) {
	var count int64
	iter := l.client.Scan(ctx, 0, keyPrefix+":*", 500).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("scanning rate limit windows: %w", err)
	}
	return count, nil
}

// Ping reports whether Redis is reachable
func (l *Limiter) Ping(ctx context.Context) error {
	return l.client.Ping(ctx).Err()
}

func windowKey(key string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, key)
}
