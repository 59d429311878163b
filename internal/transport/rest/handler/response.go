package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"syntexapply/internal/flow"
	"syntexapply/internal/model"
	"syntexapply/internal/service"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string          `json:"error"`
	State *model.FlowView `json:"state,omitempty"`
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, flow.ErrUnknownKey), errors.Is(err, flow.ErrInvalidChoice):
		return http.StatusBadRequest
	case errors.Is(err, flow.ErrValidationGap),
		errors.Is(err, flow.ErrNotAtReview),
		errors.Is(err, flow.ErrSubmitInFlight),
		errors.Is(err, flow.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, flow.ErrSubmission):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status; view is attached when known
func writeServiceError(w http.ResponseWriter, err error, view *model.FlowView) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("request failed")
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Error: msg, State: view})
}
