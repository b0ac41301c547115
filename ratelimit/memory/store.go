package memory

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/go2gg/edge/internal/clock"
	"github.com/go2gg/edge/ratelimit"
	"github.com/rs/zerolog"
)

/* In-process implementation of ratelimit.Limiter
 * Keys are spread over a fixed number of shards; each shard owns its windows behind one mutex,
 * so every check for a key runs under the same lock (single writer per key).
 */

const defaultShards = 64

type window struct {
	stamps   []int64
	expireAt int64 // ms; the window is empty after this instant unless touched again
}

type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

type Store struct {
	shards []*shard
	clock  clock.Clock
	logger zerolog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithShards overrides the number of lock shards
func WithShards(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.shards = newShards(n)
		}
	}
}

// WithLogger sets the logger used by the sweeper
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates an in-memory limiter
func NewStore(c clock.Clock, opts ...Option) *Store {
	s := &Store{
		shards: newShards(defaultShards),
		clock:  c,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newShards(n int) []*shard {
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{windows: make(map[string]*window)}
	}
	return shards
}

func (s *Store) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// Check applies the sliding window for key
func (s *Store) Check(ctx context.Context, key string, policy ratelimit.Policy) (ratelimit.Result, error) {
	if err := policy.Validate(); err != nil {
		return ratelimit.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return ratelimit.Result{}, err
	}

	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	nowMs := s.clock.Now().UnixMilli()
	w, ok := sh.windows[key]
	if !ok {
		w = &window{}
		sh.windows[key] = w
	}

	stamps, result := ratelimit.Slide(w.stamps, nowMs, policy)
	// release the backing array once it is mostly trimmed history
	if cap(stamps) > 2*policy.Limit && len(stamps) < cap(stamps)/2 {
		stamps = append(make([]int64, 0, len(stamps)), stamps...)
	}
	w.stamps = stamps
	w.expireAt = stamps[len(stamps)-1] + policy.Window.Milliseconds()
	return result, nil
}

// Reset clears the window for key
func (s *Store) Reset(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sh := s.shardFor(key)
	sh.mu.Lock()
	delete(sh.windows, key)
	sh.mu.Unlock()
	return nil
}

// Sweep drops windows whose every timestamp is outside their window and returns how many were removed
func (s *Store) Sweep() int {
	nowMs := s.clock.Now().UnixMilli()
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, w := range sh.windows {
			if w.expireAt <= nowMs {
				delete(sh.windows, key)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Len returns the number of tracked keys
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.windows)
		sh.mu.Unlock()
	}
	return n
}

// WindowCount reports Len for the metrics collector
func (s *Store) WindowCount(context.Context) (int64, error) {
	return int64(s.Len()), nil
}

// RunSweeper calls Sweep every interval until ctx is done
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Debug().Int("removed", removed).Msg("swept idle rate limit windows")
			}
		}
	}
}
