package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"syntexapply/internal/flow"
	"syntexapply/internal/model"
	"syntexapply/internal/service"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: %q", flow.ErrUnknownKey, "x"), http.StatusBadRequest},
		{flow.ErrInvalidChoice, http.StatusBadRequest},
		{flow.ErrValidationGap, http.StatusConflict},
		{flow.ErrNotAtReview, http.StatusConflict},
		{flow.ErrSubmitInFlight, http.StatusConflict},
		{service.ErrSessionNotFound, http.StatusNotFound},
		{service.ErrInvalidToken, http.StatusUnauthorized},
		{fmt.Errorf("%w: %w", flow.ErrSubmission, errors.New("down")), http.StatusBadGateway},
		{errors.New("redis: connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusFor(tt.err), tt.err.Error())
	}
}

func TestWriteServiceErrorHidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, errors.New("redis: connection refused"), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	writeServiceError(rec, flow.ErrSubmission, &model.FlowView{SubmissionStatus: model.StatusFailed})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), `"submissionStatus":"failed"`)
}
