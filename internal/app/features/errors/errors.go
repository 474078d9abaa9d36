// internal/app/features/errors/errors.go
package errors

import (
	"encoding/json"
	"net/http"
)

// errorBody is the JSON error envelope. Every failure this API reports uses
// this shape; successes carry their own per-endpoint payloads with
// "success": true.
type errorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON error response with the given status and message.
func WriteJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Message: message})
}

// Unauthorized writes a 401 "Not authenticated" response.
func Unauthorized(w http.ResponseWriter) {
	WriteJSON(w, http.StatusUnauthorized, "Not authenticated")
}

// Forbidden writes a 403 with the given message.
func Forbidden(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusForbidden, message)
}

// NotFound writes a 404 with the given message.
func NotFound(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusNotFound, message)
}

// BadRequest writes a 400 with the given message.
func BadRequest(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusBadRequest, message)
}
