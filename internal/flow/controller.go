package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"syntexapply/internal/model"
)

// Submitter delivers a finished answer set to the submission endpoint
type Submitter interface {
	Submit(ctx context.Context, answers model.AnswerSet) error
}

// SubmitterFunc adapts a function to Submitter
type SubmitterFunc func(ctx context.Context, answers model.AnswerSet) error

// Submit calls f
func (f SubmitterFunc) Submit(ctx context.Context, answers model.AnswerSet) error {
	return f(ctx, answers)
}

// Controller walks one session through a questionnaire.
//
// Steps 0..N-1 show question i; step N is the review step from which the
// answers are submitted. Forward movement is gated on a non-empty answer for
// the current question, backward movement never is. While a submission is in
// flight the flow is frozen: navigation is ignored and answers are rejected.
type Controller struct {
	mu        sync.Mutex
	questions []model.Question
	index     map[string]int
	store     *AnswerStore
	submitter Submitter

	sessionID string
	step      int
	status    model.SubmissionStatus
	lastError string
	createdAt time.Time
	updatedAt time.Time

	now func() time.Time
}

// NewController creates a controller at START for the given questionnaire
func NewController(q *model.Questionnaire, submitter Submitter) (*Controller, error) {
	if q == nil {
		return nil, errors.New("questionnaire is required")
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid questionnaire: %w", err)
	}

	index := make(map[string]int, len(q.Questions))
	for i, question := range q.Questions {
		index[question.Key] = i
	}

	c := &Controller{
		questions: q.Questions,
		index:     index,
		store:     NewAnswerStore(),
		submitter: submitter,
		status:    model.StatusNotSubmitted,
		now:       func() time.Time { return time.Now().UTC() },
	}
	c.createdAt = c.now()
	c.updatedAt = c.createdAt
	return c, nil
}

// Restore loads a previously saved state.
// Answers for keys the questionnaire no longer has are dropped.
func (c *Controller) Restore(state *model.FlowState) error {
	if state == nil {
		return fmt.Errorf("%w: nil state", ErrInvalidState)
	}
	if state.CurrentStep < 0 || state.CurrentStep > len(c.questions) {
		return fmt.Errorf("%w: step %d outside [0, %d]", ErrInvalidState, state.CurrentStep, len(c.questions))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sessionID = state.SessionID
	c.step = state.CurrentStep
	c.status = state.SubmissionStatus
	if c.status == "" {
		c.status = model.StatusNotSubmitted
	}
	c.lastError = state.LastError
	c.createdAt = state.CreatedAt
	c.updatedAt = state.UpdatedAt
	c.store.Reset()
	for k, v := range state.Answers {
		if _, ok := c.index[k]; ok {
			c.store.Set(k, v)
		}
	}
	return nil
}

// State returns a snapshot of the current flow state
func (c *Controller) State() *model.FlowState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &model.FlowState{
		SessionID:        c.sessionID,
		CurrentStep:      c.step,
		Answers:          c.store.Snapshot(),
		SubmissionStatus: c.status,
		LastError:        c.lastError,
		CreatedAt:        c.createdAt,
		UpdatedAt:        c.updatedAt,
	}
}

// Step returns the current step index
func (c *Controller) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Status returns the submission status
func (c *Controller) Status() model.SubmissionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Answer returns the stored answer for key
func (c *Controller) Answer(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Get(key)
}

// CurrentQuestion returns the question shown at the current step
func (c *Controller) CurrentQuestion() (model.Question, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step >= len(c.questions) {
		return model.Question{}, ErrTerminalStep
	}
	return c.questions[c.step], nil
}

// CanAdvance reports whether the current question has a non-empty answer
func (c *Controller) CanAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canAdvance()
}

func (c *Controller) canAdvance() bool {
	if c.step >= len(c.questions) || c.status == model.StatusSubmitting {
		return false
	}
	v, ok := c.store.Get(c.questions[c.step].Key)
	return ok && v != ""
}

// Advance moves one step forward. It is a no-op unless CanAdvance holds and
// reports whether the step changed.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.canAdvance() {
		return false
	}
	c.step++
	c.touch()
	return true
}

// Retreat moves one step back. It is a no-op on the first step or while
// submitting and reports whether the step changed.
func (c *Controller) Retreat() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.step == 0 || c.status == model.StatusSubmitting {
		return false
	}
	c.step--
	c.touch()
	return true
}

// SetAnswer stores value for key verbatim.
// Starting to answer after a completed submission begins a new application.
func (c *Controller) SetAnswer(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if c.status == model.StatusSubmitting {
		return ErrSubmitInFlight
	}
	q := c.questions[i]
	if q.Kind == model.InputSingleChoice && !q.HasChoice(value) {
		return fmt.Errorf("%w: %q for %q", ErrInvalidChoice, value, key)
	}

	if c.status == model.StatusSubmitted {
		c.status = model.StatusNotSubmitted
	}
	c.store.Set(key, value)
	c.touch()
	return nil
}

// Restart discards all answers and returns to the first step
func (c *Controller) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == model.StatusSubmitting {
		return ErrSubmitInFlight
	}
	c.reset()
	c.status = model.StatusNotSubmitted
	return nil
}

// Submit sends the answers to the submitter. It is only valid on the review
// step and at most one call can be in flight. On success the flow is reset to
// START with status submitted; on failure the answers are kept, the status is
// failed and a later Submit retries.
func (c *Controller) Submit(ctx context.Context) error {
	answers, err := c.BeginSubmit()
	if err != nil {
		return err
	}
	var submitErr error
	if c.submitter == nil {
		submitErr = errors.New("no submission endpoint configured")
	} else {
		submitErr = c.submitter.Submit(ctx, answers)
	}
	return c.FinishSubmit(submitErr)
}

// BeginSubmit marks the flow as submitting and returns the answers to send.
// Callers that persist the state between the two halves use it together with
// FinishSubmit instead of Submit.
func (c *Controller) BeginSubmit() (model.AnswerSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == model.StatusSubmitting {
		return nil, ErrSubmitInFlight
	}
	if c.step != len(c.questions) {
		return nil, ErrNotAtReview
	}
	c.status = model.StatusSubmitting
	c.lastError = ""
	c.touch()
	return c.store.Snapshot(), nil
}

// FinishSubmit records the outcome of a submission started with BeginSubmit
func (c *Controller) FinishSubmit(submitErr error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != model.StatusSubmitting {
		return fmt.Errorf("%w: no submission in progress", ErrInvalidState)
	}
	if submitErr != nil {
		c.status = model.StatusFailed
		c.lastError = submitErr.Error()
		c.touch()
		return fmt.Errorf("%w: %w", ErrSubmission, submitErr)
	}
	c.reset()
	c.status = model.StatusSubmitted
	return nil
}

// Progress returns the "step X of Y" indicator; the review step is the last one
func (c *Controller) Progress() model.Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress()
}

func (c *Controller) progress() model.Progress {
	total := len(c.questions) + 1
	step := c.step + 1
	return model.Progress{
		Step:     step,
		Total:    total,
		Fraction: float64(step) / float64(total),
	}
}

// View derives everything a client needs to render the current step
func (c *Controller) View() *model.FlowView {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := &model.FlowView{
		SessionID:        c.sessionID,
		CurrentStep:      c.step,
		Review:           c.step == len(c.questions),
		CanAdvance:       c.canAdvance(),
		CanRetreat:       c.step > 0 && c.status != model.StatusSubmitting,
		Progress:         c.progress(),
		Answers:          c.store.Snapshot(),
		SubmissionStatus: c.status,
		LastError:        c.lastError,
	}
	v.CanSubmit = v.Review && c.status != model.StatusSubmitting
	if !v.Review {
		q := c.questions[c.step]
		v.Question = &q
	}
	return v
}

func (c *Controller) reset() {
	c.store.Reset()
	c.step = 0
	c.lastError = ""
	c.touch()
}

func (c *Controller) touch() {
	c.updatedAt = c.now()
}
