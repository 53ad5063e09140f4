package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"duoq_server/services"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeServiceError maps the service error taxonomy onto HTTP status codes.
// Everything in the taxonomy is client-correctable; only unknown errors
// become a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, map[string]interface{}{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrListingNotFound), errors.Is(err, services.ErrApplicantNotFound):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrAlreadyQueued), errors.Is(err, services.ErrAlreadyApplied):
		writeJSON(w, http.StatusConflict, map[string]interface{}{"success": false, "error": err.Error()})
	case errors.Is(err, services.ErrAlreadyResolved):
		// Lost race, not a failure: the caller just needs to know someone
		// else already acted on this applicant.
		writeJSON(w, http.StatusConflict, map[string]interface{}{"success": false, "alreadyHandled": true, "error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"success": false, "error": "internal server error"})
	}
}
