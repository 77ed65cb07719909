// internal/controller/respond.go
package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brightpost/mailing-backend/internal/apperrors"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses: not-found 404,
// access denied 403, validation 422, lifecycle block 409.
func writeError(w http.ResponseWriter, err error) {
	var nf *apperrors.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
		return
	}
	if errors.Is(err, apperrors.ErrAccessDenied) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "access denied"})
		return
	}
	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": ve.Error()})
		return
	}
	var be *apperrors.BlockedError
	if errors.As(err, &be) {
		writeJSON(w, http.StatusConflict, map[string]string{
			"error":  be.Error(),
			"reason": string(be.Reason),
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
