package chi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog"
	"github.com/go2gg/edge/dunning"
	"github.com/go2gg/edge/internal/clock"
	"github.com/go2gg/edge/internal/user"
	"github.com/go2gg/edge/ratelimit"
	"github.com/go2gg/edge/ratelimit/gateway"
	"github.com/go2gg/edge/webhook"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RequestTimeout bounds every request handled by the router
const RequestTimeout = 30 * time.Second

/* Deps are the collaborators the router serves. Optional ones may be nil:
 * without Counter the counter protocol is not mounted, without Gateway or Policies
 * nothing is rate limited, without Dunning no dunning routes are mounted.
 */
type Deps struct {
	ServiceName string
	Logger      zerolog.Logger
	Clock       clock.Clock

	Gateway  *gateway.Gateway
	Policies *ratelimit.Policies
	Counter  ratelimit.Limiter

	Webhooks webhook.UseCase
	Dunning  dunning.UseCase
	Opener   DunningOpener
	Scans    ScanEnqueuer

	Metrics http.Handler
	Ready   func(ctx context.Context) error
}

// Handlers sets up the API routes
func Handlers(ctx context.Context, d Deps) *chi.Mux {
	if d.Clock == nil {
		d.Clock = clock.System()
	}
	if d.ServiceName == "" {
		d.ServiceName = "go2-edge"
	}

	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(d.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))
	r.Use(otelhttp.NewMiddleware(d.ServiceName))
	r.Use(user.Middleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(r.Context()); err != nil {
				d.Logger.Warn().Err(err).Msg("readiness check failed")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	limit := limiterFor(d)

	r.Route("/v1", func(r chi.Router) {
		// Counter protocol for remote limiter clients; callers are other services, not tenants
		if d.Counter != nil {
			r.Route("/ratelimit/{key}", func(r chi.Router) {
				r.Method(http.MethodGet, "/check", getCheck(d.Counter))
				r.Method(http.MethodPost, "/reset", postReset(d.Counter))
			})
		}

		if d.Webhooks != nil {
			r.Group(func(r chi.Router) {
				r.Use(user.Require)
				r.Use(limit(ratelimit.PolicyAPI, gateway.ByUser))

				r.Method(http.MethodPost, "/events", postEvent(d.Webhooks))
				r.Route("/webhooks", func(r chi.Router) {
					r.Method(http.MethodGet, "/", getSubscriptions(d.Webhooks))
					r.Method(http.MethodPost, "/", postSubscription(d.Webhooks))
					r.Route("/{id}", func(r chi.Router) {
						r.Method(http.MethodGet, "/", getSubscription(d.Webhooks))
						r.Method(http.MethodDelete, "/", deleteSubscription(d.Webhooks))
						r.Method(http.MethodPost, "/reactivate", postReactivate(d.Webhooks))
						r.Method(http.MethodGet, "/deliveries", getDeliveries(d.Webhooks))
						r.With(limit(ratelimit.PolicyAuth, gateway.ByUser)).
							Method(http.MethodPost, "/test", postTest(d.Webhooks))
						r.With(limit(ratelimit.PolicyPasswordReset, gateway.ByUser)).
							Method(http.MethodPost, "/rotate-secret", postRotateSecret(d.Webhooks))
					})
				})
			})
		}

		if d.Dunning != nil {
			r.Route("/dunning", func(r chi.Router) {
				r.Use(limit(ratelimit.PolicyAPI, gateway.ByIP))

				if d.Opener != nil {
					r.Method(http.MethodPost, "/", postDunning(d.Opener))
				}
				r.Method(http.MethodGet, "/pending", getPending(d.Dunning, d.Clock))
				r.Method(http.MethodGet, "/expired", getExpired(d.Dunning, d.Clock))
				if d.Scans != nil {
					r.Method(http.MethodPost, "/scan", postScan(d.Scans))
				}
				r.Method(http.MethodPost, "/invoices/{invoiceId}/resolve", postResolve(d.Dunning))
				r.Method(http.MethodGet, "/{id}", getDunning(d.Dunning))
			})
		}
	})

	return r
}

// limiterFor returns a middleware factory for named policies; without a gateway it passes requests through
func limiterFor(d Deps) func(name string, key gateway.KeyFunc) func(http.Handler) http.Handler {
	return func(name string, key gateway.KeyFunc) func(http.Handler) http.Handler {
		if d.Gateway == nil || d.Policies == nil {
			return passthrough
		}
		policy, err := d.Policies.Get(name)
		if err != nil {
			d.Logger.Warn().Err(err).Str("policy", name).Msg("rate limit policy missing, route not limited")
			return passthrough
		}
		return d.Gateway.Limit(name, policy, key)
	}
}

func passthrough(next http.Handler) http.Handler {
	return next
}
