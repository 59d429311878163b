package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"syntexapply/internal/service"
	"syntexapply/internal/transport/rest/middleware"
)

// SessionHandler handles applicant session endpoints
type SessionHandler struct {
	appSvc *service.ApplicationService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(appSvc *service.ApplicationService) *SessionHandler {
	return &SessionHandler{appSvc: appSvc}
}

// AnswerRequest is the request body for setting an answer
type AnswerRequest struct {
	Value *string `json:"value"`
}

// Start handles POST /v1/sessions
//
//	@Summary	Start an application session
//	@Tags		sessions
//	@Produce	json
//	@Success	201	{object}	model.StartSessionResponse
//	@Router		/v1/sessions [post]
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	resp, err := h.appSvc.Start(r.Context())
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Get handles GET /v1/sessions/{token}
//
//	@Summary	Current session view
//	@Tags		sessions
//	@Produce	json
//	@Param		token	path		string	true	"Session token"
//	@Success	200		{object}	model.FlowView
//	@Failure	404		{object}	ErrorResponse
//	@Router		/v1/sessions/{token} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.appSvc.State(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SetAnswer handles PUT /v1/sessions/{token}/answers/{key}
//
//	@Summary	Record an answer
//	@Tags		sessions
//	@Accept		json
//	@Produce	json
//	@Param		token	path		string			true	"Session token"
//	@Param		key		path		string			true	"Question key"
//	@Param		body	body		AnswerRequest	true	"Answer"
//	@Success	200		{object}	model.FlowView
//	@Failure	400		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Router		/v1/sessions/{token}/answers/{key} [put]
func (h *SessionHandler) SetAnswer(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.appSvc.SetAnswer(r.Context(), middleware.GetSessionID(r.Context()), key, *req.Value)
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Advance handles POST /v1/sessions/{token}/advance
//
//	@Summary	Move to the next step
//	@Tags		sessions
//	@Produce	json
//	@Param		token	path		string	true	"Session token"
//	@Success	200		{object}	model.FlowView
//	@Failure	409		{object}	ErrorResponse
//	@Router		/v1/sessions/{token}/advance [post]
func (h *SessionHandler) Advance(w http.ResponseWriter, r *http.Request) {
	view, err := h.appSvc.Advance(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Retreat handles POST /v1/sessions/{token}/retreat
//
//	@Summary	Move to the previous step
//	@Tags		sessions
//	@Produce	json
//	@Param		token	path		string	true	"Session token"
//	@Success	200		{object}	model.FlowView
//	@Router		/v1/sessions/{token}/retreat [post]
func (h *SessionHandler) Retreat(w http.ResponseWriter, r *http.Request) {
	view, err := h.appSvc.Retreat(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Submit handles POST /v1/sessions/{token}/submit
//
//	@Summary	Submit the answers from the review step
//	@Tags		sessions
//	@Produce	json
//	@Param		token	path		string	true	"Session token"
//	@Success	200		{object}	model.FlowView
//	@Failure	409		{object}	ErrorResponse
//	@Failure	502		{object}	ErrorResponse
//	@Router		/v1/sessions/{token}/submit [post]
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	view, err := h.appSvc.Submit(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, view)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Restart handles POST /v1/sessions/{token}/restart
//
//	@Summary	Discard all answers
//	@Tags		sessions
//	@Produce	json
//	@Param		token	path		string	true	"Session token"
//	@Success	200		{object}	model.FlowView
//	@Router		/v1/sessions/{token}/restart [post]
func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	view, err := h.appSvc.Restart(r.Context(), middleware.GetSessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
