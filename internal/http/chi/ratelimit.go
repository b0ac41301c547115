package chi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go2gg/edge/ratelimit"
)

/* Counter protocol served to remote limiter clients
 * The window query parameter is in seconds.
 */

// getCheck handles GET /v1/ratelimit/{key}/check?limit=<int>&window=<seconds>
func getCheck(limiter ratelimit.Limiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if key == "" {
			writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST", "key is required")
			return
		}

		policy, err := policyFromQuery(r)
		if err != nil {
			writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}

		result, err := limiter.Check(r.Context(), key, policy)
		if err != nil {
			writeError(w, r, fmt.Errorf("checking %s: %w", key, err))
			return
		}
		writeJSON(w, http.StatusOK, result)
	})
}

// postReset handles POST /v1/ratelimit/{key}/reset
func postReset(limiter ratelimit.Limiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		if key == "" {
			writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST", "key is required")
			return
		}
		if err := limiter.Reset(r.Context(), key); err != nil {
			writeError(w, r, fmt.Errorf("resetting %s: %w", key, err))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func policyFromQuery(r *http.Request) (ratelimit.Policy, error) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil {
		return ratelimit.Policy{}, fmt.Errorf("limit must be an integer")
	}
	window, err := strconv.Atoi(q.Get("window"))
	if err != nil {
		return ratelimit.Policy{}, fmt.Errorf("window must be an integer number of seconds")
	}
	policy := ratelimit.Policy{Limit: limit, Window: time.Duration(window) * time.Second}
	if err := policy.Validate(); err != nil {
		return ratelimit.Policy{}, err
	}
	return policy, nil
}
