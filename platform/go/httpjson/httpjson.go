// Package httpjson carries the shared JSON response and decoding helpers used
// by every domain handler.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// ErrorBody is the uniform error payload.
type ErrorBody struct {
	Error   string              `json:"error"`
	Details map[string][]string `json:"details,omitempty"`
}

// Write serializes v with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError emits the uniform error payload.
func WriteError(w http.ResponseWriter, status int, message string) {
	Write(w, status, ErrorBody{Error: message})
}

// WriteValidationError emits a 400 with per-field details.
func WriteValidationError(w http.ResponseWriter, details map[string][]string) {
	Write(w, http.StatusBadRequest, ErrorBody{Error: "validation error", Details: details})
}

// maxBodyBytes caps request payload size for Decode.
const maxBodyBytes = 1 << 20

// Decode parses a JSON request body into dst. Unknown fields are tolerated;
// malformed or oversized payloads are rejected.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errors.New("malformed request body")
	}
	return nil
}
