package api

import (
	"encoding/json"
	"log"
	"net/http"

	"learnhub/internal/apperrors"
)

// writeJSON writes the standard response envelope. Every payload carries a
// "success" flag; extra keys come from data.
func writeJSON(w http.ResponseWriter, status int, success bool, message string, data map[string]any) {
	body := map[string]any{"success": success}
	if message != "" {
		body["message"] = message
	}
	for k, v := range data {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[api] failed to encode response: %v", err)
	}
}

// writeError maps a service error to its HTTP status. Validation errors add
// a field-keyed errors object; the cause of a 500 is logged but never sent
// to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[api] %s %s: %v", r.Method, r.URL.Path, err)
	}

	var data map[string]any
	if fields := apperrors.FieldsOf(err); len(fields) > 0 {
		data = map[string]any{"errors": fields}
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	writeJSON(w, status, false, message, data)
}

// decodeJSON decodes the request body into dst, rejecting malformed JSON
// with a validation error.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Validation("invalid request body", nil)
	}
	return nil
}
