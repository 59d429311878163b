package handler

import (
	"net/http"

	"syntexapply/internal/model"
)

// QuestionnaireSource provides the questionnaire in use
type QuestionnaireSource interface {
	Questionnaire() *model.Questionnaire
}

// QuestionnaireHandler serves the question list
type QuestionnaireHandler struct {
	source QuestionnaireSource
}

// NewQuestionnaireHandler creates a new questionnaire handler
func NewQuestionnaireHandler(source QuestionnaireSource) *QuestionnaireHandler {
	return &QuestionnaireHandler{source: source}
}

// Get handles GET /v1/questionnaire
//
//	@Summary	Questionnaire in step order
//	@Tags		questionnaire
//	@Produce	json
//	@Success	200	{object}	model.Questionnaire
//	@Router		/v1/questionnaire [get]
func (h *QuestionnaireHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.source.Questionnaire())
}
