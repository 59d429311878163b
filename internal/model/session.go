package model

import "time"

// SubmissionStatus tracks the lifecycle of a session's submission
type SubmissionStatus string

const (
	StatusNotSubmitted SubmissionStatus = "not-submitted"
	StatusSubmitting   SubmissionStatus = "submitting"
	StatusSubmitted    SubmissionStatus = "submitted"
	StatusFailed       SubmissionStatus = "failed"
)

// FlowState is the mutable state of one applicant session.
// CurrentStep == len(questions) is the review step.
type FlowState struct {
	SessionID        string           `json:"sessionId"`
	CurrentStep      int              `json:"currentStep"`
	Answers          AnswerSet        `json:"answers"`
	SubmissionStatus SubmissionStatus `json:"submissionStatus"`
	LastError        string           `json:"lastError,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// NewFlowState returns the START state for a session
func NewFlowState(sessionID string) *FlowState {
	now := time.Now().UTC()
	return &FlowState{
		SessionID:        sessionID,
		CurrentStep:      0,
		Answers:          AnswerSet{},
		SubmissionStatus: StatusNotSubmitted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Progress is the "step X of Y" indicator shown above each question.
// The review step counts as the last step.
type Progress struct {
	Step     int     `json:"step"`
	Total    int     `json:"total"`
	Fraction float64 `json:"fraction"`
}

// FlowView is the derived UI state of a session
type FlowView struct {
	SessionID        string           `json:"sessionId"`
	CurrentStep      int              `json:"currentStep"`
	Question         *Question        `json:"question"` // nil on the review step
	Review           bool             `json:"review"`
	CanAdvance       bool             `json:"canAdvance"`
	CanRetreat       bool             `json:"canRetreat"`
	CanSubmit        bool             `json:"canSubmit"`
	Progress         Progress         `json:"progress"`
	Answers          AnswerSet        `json:"answers"`
	SubmissionStatus SubmissionStatus `json:"submissionStatus"`
	LastError        string           `json:"lastError,omitempty"`
}
