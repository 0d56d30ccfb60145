package server

import (
	"encoding/json"
	"net/http"

	"github.com/gravitymirage/gravitymirage/pkg/errors"
)

// errorResponse is the JSON body for all error replies.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps typed errors to HTTP statuses: validation failures are
// the client's fault, missing resources are 404, everything else is a 500
// with the internal detail kept out of the response body.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.IsValidation(err):
		status = http.StatusBadRequest
		msg = errors.UserMessage(err)
	case code == errors.ErrCodeNotFound,
		code == errors.ErrCodeImageNotFound,
		code == errors.ErrCodeJobNotFound:
		status = http.StatusNotFound
		msg = errors.UserMessage(err)
	}

	writeJSON(w, status, errorResponse{Error: msg, Code: string(code)})
}
