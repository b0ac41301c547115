package chi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go2gg/edge/dunning"
	"github.com/go2gg/edge/internal/clock"
)

// DunningOpener starts dunning for a failed invoice, sending the first reminder
type DunningOpener interface {
	Open(ctx context.Context, input dunning.OpenInput) (dunning.Record, error)
}

// ScanEnqueuer asks the job queue for a dunning scan
type ScanEnqueuer interface {
	EnqueueDunningScan(ctx context.Context, reason string) (bool, error)
}

type scanResponse struct {
	Enqueued bool `json:"enqueued"`
}

// postDunning handles POST /v1/dunning
func postDunning(opener DunningOpener) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var input dunning.OpenInput
		if !decodeJSON(w, r, &input) {
			return
		}
		rec, err := opener.Open(r.Context(), input)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	})
}

// getDunning handles GET /v1/dunning/{id}
func getDunning(svc dunning.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, err := svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	})
}

// postResolve handles POST /v1/dunning/invoices/{invoiceId}/resolve. Unknown invoices are accepted.
func postResolve(svc dunning.UseCase) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Resolve(r.Context(), chi.URLParam(r, "invoiceId")); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// getPending handles GET /v1/dunning/pending
func getPending(svc dunning.UseCase, c clock.Clock) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reminders, err := svc.PendingReminders(r.Context(), c.Now())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if reminders == nil {
			reminders = []dunning.Reminder{}
		}
		writeJSON(w, http.StatusOK, reminders)
	})
}

// getExpired handles GET /v1/dunning/expired
func getExpired(svc dunning.UseCase, c clock.Clock) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.ExpiredRecords(r.Context(), c.Now())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if records == nil {
			records = []dunning.Record{}
		}
		writeJSON(w, http.StatusOK, records)
	})
}

// postScan handles POST /v1/dunning/scan
func postScan(scans ScanEnqueuer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enqueued, err := scans.EnqueueDunningScan(r.Context(), "manual")
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, scanResponse{Enqueued: enqueued})
	})
}
