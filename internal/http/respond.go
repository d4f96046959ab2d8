package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// errorBody is the JSON error envelope every non-2xx response carries.
type errorBody struct {
	Error      string           `json:"error"`
	Violations []FieldViolation `json:"violations,omitempty"`
}

// FieldViolation names one invalid request field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates per-field violations for a 400 response.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "invalid request: " + e.Violations[0].Field + " " + e.Violations[0].Message
	}
	return "invalid request"
}

func (e *ValidationError) add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

func (e *ValidationError) ok() bool { return len(e.Violations) == 0 }

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

func respondValidationError(w http.ResponseWriter, verr *ValidationError) {
	respondJSON(w, http.StatusBadRequest, errorBody{
		Error:      verr.Error(),
		Violations: verr.Violations,
	})
}
