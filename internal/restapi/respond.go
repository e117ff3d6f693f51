package restapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cryptonote-lws/lws/internal/errs"
)

// statusError carries an explicit HTTP status for failures that have no
// corresponding errs.Kind: unknown routes, wrong methods, disabled
// endpoints, and malformed request bodies.
type statusError struct {
	status int
	reason string
}

func (e *statusError) Error() string { return e.reason }

func newStatusError(status int, reason string) *statusError {
	return &statusError{status: status, reason: reason}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError renders err as the JSON error body, choosing its status
// code from a *statusError's explicit code or, failing that, from
// errs.HTTPStatus.
func writeError(w http.ResponseWriter, err error) {
	var se *statusError
	if e, ok := err.(*statusError); ok {
		se = e
	}
	if se != nil {
		writeJSON(w, se.status, errorResponse{Status: "error", Reason: se.reason})
		return
	}

	status := http.StatusInternalServerError
	if kind, ok := errs.KindOf(err); ok {
		status = errs.HTTPStatus(kind)
	}
	writeJSON(w, status, errorResponse{Status: "error", Reason: err.Error()})
}

// decodeJSON reads and decodes a request body, rejecting unknown fields
// and trailing garbage, per the light-wallet API's strict-input posture.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return newStatusError(http.StatusBadRequest, "malformed request body")
	}
	if _, err := dec.Token(); err != io.EOF {
		return newStatusError(http.StatusBadRequest, "malformed request body")
	}
	return nil
}
