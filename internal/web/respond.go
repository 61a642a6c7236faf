package web

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/pharmakart/pharmacy-backend/internal/apperr"
)

// Respond writes body as JSON with the given status.
func Respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// Error writes a {"error": msg} body with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	Respond(w, status, map[string]string{"error": msg})
}

// RespondError maps a domain error onto an HTTP response. Unclassified errors
// are logged and surfaced as a generic 500 so datastore details never reach
// the client.
func RespondError(w http.ResponseWriter, log zerolog.Logger, err error) {
	switch apperr.KindOf(err) {
	case apperr.Unauthenticated:
		Error(w, http.StatusUnauthorized, err.Error())
	case apperr.Forbidden:
		Error(w, http.StatusForbidden, err.Error())
	case apperr.NotFound:
		Error(w, http.StatusNotFound, err.Error())
	case apperr.Validation, apperr.InsufficientStock:
		Error(w, http.StatusBadRequest, err.Error())
	case apperr.Conflict:
		Error(w, http.StatusConflict, err.Error())
	default:
		log.Error().Err(err).Msg("internal error")
		Error(w, http.StatusInternalServerError, "internal server error")
	}
}

// DecodeJSON decodes a request body, classifying malformed JSON as a
// validation failure.
func DecodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid JSON body", err)
	}
	return nil
}
