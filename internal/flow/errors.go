package flow

import "errors"

var (
	// ErrUnknownKey is returned when an answer targets a key outside the questionnaire
	ErrUnknownKey = errors.New("unknown question key")
	// ErrInvalidChoice is returned when a single-choice answer is not one of the declared choices
	ErrInvalidChoice = errors.New("answer is not one of the allowed choices")
	// ErrValidationGap is returned when the applicant tries to move on without answering
	ErrValidationGap = errors.New("an answer is required before continuing")
	// ErrTerminalStep is returned by CurrentQuestion on the review step
	ErrTerminalStep = errors.New("no current question on the review step")
	// ErrNotAtReview is returned when Submit is called before the review step
	ErrNotAtReview = errors.New("submission is only possible from the review step")
	// ErrSubmitInFlight is returned while a submission is pending
	ErrSubmitInFlight = errors.New("a submission is already in progress")
	// ErrSubmission wraps a failed call to the submission endpoint
	ErrSubmission = errors.New("submission failed")
	// ErrInvalidState is returned when restoring a state that does not fit the questionnaire
	ErrInvalidState = errors.New("flow state does not match questionnaire")
)
