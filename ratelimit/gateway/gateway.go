package gateway

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/go2gg/edge/internal/clock"
	"github.com/go2gg/edge/internal/user"
	"github.com/go2gg/edge/ratelimit"
	"github.com/rs/zerolog"
)

const (
	HeaderLimit      = "X-RateLimit-Limit"
	HeaderRemaining  = "X-RateLimit-Remaining"
	HeaderReset      = "X-RateLimit-Reset"
	HeaderRetryAfter = "Retry-After"
)

// Decision outcomes reported to the Recorder
const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
	OutcomeFailOpen = "fail_open"
)

// KeyFunc derives the rate limit key for a request
type KeyFunc func(r *http.Request) string

// Recorder receives one call per decision
type Recorder interface {
	RecordRateLimitDecision(ctx context.Context, policy, outcome string)
}

/* Gateway turns limiter decisions into HTTP behavior.
 * A disabled gateway, or one without a limiter, lets every request through untouched.
 * A limiter error lets the request through (fail open) and is logged.
 */
type Gateway struct {
	limiter  ratelimit.Limiter
	enabled  bool
	clock    clock.Clock
	logger   zerolog.Logger
	recorder Recorder
}

type Option func(*Gateway)

func WithEnabled(enabled bool) Option {
	return func(g *Gateway) { g.enabled = enabled }
}

func WithClock(c clock.Clock) Option {
	return func(g *Gateway) { g.clock = c }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(g *Gateway) { g.logger = logger }
}

func WithRecorder(r Recorder) Option {
	return func(g *Gateway) { g.recorder = r }
}

// New creates a gateway. limiter may be nil, in which case the gateway passes everything through.
func New(limiter ratelimit.Limiter, opts ...Option) *Gateway {
	g := &Gateway{
		limiter: limiter,
		enabled: true,
		clock:   clock.System(),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Limit returns middleware enforcing policy. name namespaces the keys so that policies
// applied to the same client do not share a window. keyFunc defaults to ByIP.
func (g *Gateway) Limit(name string, policy ratelimit.Policy, keyFunc KeyFunc) func(http.Handler) http.Handler {
	if keyFunc == nil {
		keyFunc = ByIP
	}
	return func(next http.Handler) http.Handler {
		if !g.enabled || g.limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := name + ":" + keyFunc(r)

			result, err := g.limiter.Check(ctx, key, policy)
			if err != nil {
				g.logger.Warn().Err(err).Str("policy", name).Msg("rate limiter unavailable, allowing request")
				g.record(ctx, name, OutcomeFailOpen)
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set(HeaderLimit, strconv.Itoa(policy.Limit))
			h.Set(HeaderRemaining, strconv.Itoa(result.Remaining))
			h.Set(HeaderReset, strconv.FormatInt(result.ResetAt, 10))

			if !result.Allowed {
				g.record(ctx, name, OutcomeRejected)
				writeRejection(w, result.RetryAfter(g.clock.Now()))
				return
			}

			g.record(ctx, name, OutcomeAllowed)
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Gateway) record(ctx context.Context, policy, outcome string) {
	if g.recorder != nil {
		g.recorder.RecordRateLimitDecision(ctx, policy, outcome)
	}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	RetryAfter int64  `json:"retryAfter"`
}

func writeRejection(w http.ResponseWriter, retryAfter int64) {
	w.Header().Set(HeaderRetryAfter, strconv.FormatInt(retryAfter, 10))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:       "RATE_LIMITED",
			Message:    "Too many requests. Please try again in " + strconv.FormatInt(retryAfter, 10) + " seconds.",
			RetryAfter: retryAfter,
		},
	})
}

// ByIP keys requests by client IP
func ByIP(r *http.Request) string {
	return "ip:" + ClientIP(r)
}

// ByUser keys requests by authenticated user id, falling back to the client IP
func ByUser(r *http.Request) string {
	if id, ok := user.FromContext(r.Context()); ok {
		return "user:" + id.UserID
	}
	return ByIP(r)
}

// ClientIP resolves the client address from proxy headers, then the connection
func ClientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		if r.RemoteAddr == "" {
			return "unknown"
		}
		return r.RemoteAddr
	}
	return host
}
