package chi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go2gg/edge/internal/user"
	"github.com/go2gg/edge/webhook"
	"github.com/go2gg/edge/webhook/payload"
)

/* HTTP layer DTOs for the webhook API
 * Separate from domain entities so the secret only leaves the service on create and rotate
 */

// subscriptionResponse represents a subscription without its secret
type subscriptionResponse struct {
	ID              string     `json:"id"`
	URL             string     `json:"url"`
	Events          []string   `json:"events"`
	IsActive        bool       `json:"isActive"`
	FailureCount    int        `json:"failureCount"`
	LastTriggeredAt *time.Time `json:"lastTriggeredAt,omitempty"`
	LastStatus      int        `json:"lastStatus,omitempty"`
	OrganizationID  string     `json:"organizationId,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// secretResponse is returned by create and rotate only
type secretResponse struct {
	subscriptionResponse
	Secret string `json:"secret"`
}

type deliveryResponse struct {
	ID         string          `json:"id"`
	WebhookID  string          `json:"webhookId"`
	Event      string          `json:"event"`
	Payload    json.RawMessage `json:"payload"`
	StatusCode int             `json:"statusCode"`
	Response   string          `json:"response,omitempty"`
	DurationMs int64           `json:"durationMs"`
	Success    bool            `json:"success"`
	Attempts   int             `json:"attempts"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type outcomeResponse struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Response   string `json:"response,omitempty"`
	DurationMs int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

type createSubscriptionRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events"`
}

type eventRequest struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func toSubscriptionResponse(s webhook.Subscription) subscriptionResponse {
	events := s.Events
	if events == nil {
		events = []string{}
	}
	return subscriptionResponse{
		ID:              s.ID,
		URL:             s.URL,
		Events:          events,
		IsActive:        s.IsActive,
		FailureCount:    s.FailureCount,
		LastTriggeredAt: s.LastTriggeredAt,
		LastStatus:      s.LastStatus,
		OrganizationID:  s.OrganizationID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func toDeliveryResponse(d webhook.Delivery) deliveryResponse {
	body := json.RawMessage(d.Payload)
	if !json.Valid(body) {
		body = json.RawMessage("null")
	}
	return deliveryResponse{
		ID:         d.ID,
		WebhookID:  d.WebhookID,
		Event:      d.Event,
		Payload:    body,
		StatusCode: d.StatusCode,
		Response:   d.Response,
		DurationMs: d.Duration.Milliseconds(),
		Success:    d.Success,
		Attempts:   d.Attempts,
		CreatedAt:  d.CreatedAt,
	}
}

// scopeFrom builds the tenant scope from the authenticated identity; routes using it sit behind user.Require
func scopeFrom(r *http.Request) webhook.Scope {
	id, _ := user.FromContext(r.Context())
	return webhook.Scope{UserID: id.UserID, OrganizationID: id.OrganizationID}
}

// postSubscription handles POST /v1/webhooks
func postSubscription(svc webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createSubscriptionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sub, err := svc.Create(r.Context(), scopeFrom(r), webhook.CreateInput{URL: req.URL, Events: req.Events})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, secretResponse{subscriptionResponse: toSubscriptionResponse(sub), Secret: sub.Secret})
	})
}

// getSubscriptions handles GET /v1/webhooks
func getSubscriptions(svc webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subs, err := svc.List(r.Context(), scopeFrom(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		responses := make([]subscriptionResponse, 0, len(subs))
		for _, s := range subs {
			responses = append(responses, toSubscriptionResponse(s))
		}
		writeJSON(w, http.StatusOK, responses)
	})
}

// getSubscription handles GET /v1/webhooks/{id}
func getSubscription(svc webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, err := svc.Get(r.Context(), scopeFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSubscriptionResponse(sub))
	})
}

// deleteSubscription handles DELETE /v1/webhooks/{id}
func deleteSubscription(svc webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), scopeFrom(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// postReactivate handles POST /v1/webhooks/{id}/reactivate
func postReactivate(svc webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, err := svc.Reactivate(r.Context(), scopeFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toSubscriptionResponse(sub))
	})
}

// postRotateSecret handles POST /v1/webhooks/{id}/rotate-secret
func postRotateSecret(svc webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, err := svc.RotateSecret(r.Context(), scopeFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, secretResponse{subscriptionResponse: toSubscriptionResponse(sub), Secret: sub.Secret})
	})
}

// postTest handles POST /v1/webhooks/{id}/test
func postTest(svc webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.Test(r.Context(), scopeFrom(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp := outcomeResponse{
			Success:    out.Success,
			StatusCode: out.StatusCode,
			Response:   out.Response,
			DurationMs: out.Duration.Milliseconds(),
		}
		if out.Err != nil {
			resp.Error = out.Err.Error()
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// getDeliveries handles GET /v1/webhooks/{id}/deliveries?status=<succeeded|failed>&limit=<int>
func getDeliveries(svc webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		status, err := webhook.ParseStatus(q.Get("status"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter := webhook.DeliveryFilter{Status: status}
		if raw := q.Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 1 {
				writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer")
				return
			}
			filter.Limit = limit
		}

		deliveries, err := svc.ListDeliveries(r.Context(), scopeFrom(r), chi.URLParam(r, "id"), filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		responses := make([]deliveryResponse, 0, len(deliveries))
		for _, d := range deliveries {
			responses = append(responses, toDeliveryResponse(d))
		}
		writeJSON(w, http.StatusOK, responses)
	})
}

// postEvent handles POST /v1/events. Delivery happens in the background; the caller gets 202.
func postEvent(svc webhook.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req eventRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := payload.ValidateEventName(req.Event); err != nil {
			writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
			return
		}
		// forwarded as raw bytes so numbers keep their exact representation
		data := req.Data
		if len(data) == 0 {
			data = json.RawMessage("null")
		}
		svc.Publish(scopeFrom(r), req.Event, data)
		writeJSON(w, http.StatusAccepted, map[string]string{"event": req.Event})
	})
}
