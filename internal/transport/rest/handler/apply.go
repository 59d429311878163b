package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"syntexapply/internal/model"
	"syntexapply/internal/service"
)

const maxApplyBody = 1 << 20

// ApplyHandler is the submission endpoint
type ApplyHandler struct {
	submissionSvc *service.SubmissionService
}

// NewApplyHandler creates a new apply handler
func NewApplyHandler(submissionSvc *service.SubmissionService) *ApplyHandler {
	return &ApplyHandler{submissionSvc: submissionSvc}
}

// Apply handles POST /v1/apply
//
//	@Summary	Record and relay a finished application
//	@Tags		apply
//	@Accept		json
//	@Produce	json
//	@Param		body	body		map[string]string	true	"Answers keyed by question"
//	@Success	200		{object}	model.SubmissionReceipt
//	@Failure	400		{object}	model.SubmissionReceipt
//	@Failure	500		{object}	model.SubmissionReceipt
//	@Router		/v1/apply [post]
func (h *ApplyHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var answers model.AnswerSet
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxApplyBody)).Decode(&answers); err != nil || answers == nil {
		writeJSON(w, http.StatusBadRequest, model.SubmissionReceipt{Error: "request body must be a JSON object of string values"})
		return
	}

	receipt, err := h.submissionSvc.Submit(r.Context(), answers)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, service.ErrNotAccepted) {
			msg = service.ErrNotAccepted.Error()
		}
		writeJSON(w, http.StatusInternalServerError, model.SubmissionReceipt{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}
