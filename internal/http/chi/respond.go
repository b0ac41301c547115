package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/httplog"
	"github.com/go2gg/edge/dunning"
	"github.com/go2gg/edge/webhook"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: message}})
}

/* writeError maps domain errors to HTTP statuses.
 * Unknown errors are logged on the request entry and reported as 500 without details.
 */
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, webhook.ErrInvalid), errors.Is(err, dunning.ErrInvalid):
		writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, webhook.ErrNotFound), errors.Is(err, dunning.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, dunning.ErrClosed), errors.Is(err, dunning.ErrReminderAlreadySent):
		writeErrorCode(w, http.StatusConflict, "CONFLICT", err.Error())
	default:
		logger := httplog.LogEntry(r.Context())
		logger.Error().Err(err).Msg("request failed")
		writeErrorCode(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeErrorCode(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
