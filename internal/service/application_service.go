package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"syntexapply/internal/cache"
	"syntexapply/internal/flow"
	"syntexapply/internal/metrics"
	"syntexapply/internal/model"
)

var (
	ErrSessionNotFound = errors.New("session not found or expired")
)

// Server message types pushed to session listeners
const (
	MsgState            = "state"
	MsgSubmissionResult = "submission_result"
)

const (
	defaultSubmitTimeout = 30 * time.Second
	errInterrupted       = "submission was interrupted, please submit again"
)

// SubmissionResult is broadcast when a submission attempt finishes
type SubmissionResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ApplicationService runs applicant sessions. Every call loads the session's
// FlowState from the cache, rebuilds a flow.Controller, applies the operation
// and stores the new snapshot.
type ApplicationService struct {
	questionnaire *model.Questionnaire
	sessions      cache.SessionCache
	authSvc       *AuthService
	submitter     flow.Submitter
	broadcaster   Broadcaster

	locks         *keyedMutex
	submitTimeout time.Duration
	now           func() time.Time
}

// NewApplicationService creates a new application service
func NewApplicationService(
	q *model.Questionnaire,
	sessions cache.SessionCache,
	authSvc *AuthService,
	submitter flow.Submitter,
) (*ApplicationService, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid questionnaire: %w", err)
	}
	return &ApplicationService{
		questionnaire: q,
		sessions:      sessions,
		authSvc:       authSvc,
		submitter:     submitter,
		locks:         newKeyedMutex(),
		submitTimeout: defaultSubmitTimeout,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *ApplicationService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Questionnaire returns the questionnaire sessions walk through
func (s *ApplicationService) Questionnaire() *model.Questionnaire {
	return s.questionnaire
}

// Questions returns the ordered question list
func (s *ApplicationService) Questions() []model.Question {
	return s.questionnaire.Questions
}

// Start creates a session at START and returns its token
func (s *ApplicationService) Start(ctx context.Context) (*model.StartSessionResponse, error) {
	id := uuid.New().String()
	state := model.NewFlowState(id)

	c, err := s.controller(state)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Set(ctx, c.State()); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	token, err := s.authSvc.GenerateSessionToken(id)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	metrics.RecordSessionStarted()
	log.WithField("session", id).Info("application session started")
	return &model.StartSessionResponse{Token: token, State: c.View()}, nil
}

// Resolve maps a session token to its session id
func (s *ApplicationService) Resolve(token string) (string, error) {
	claims, err := s.authSvc.ValidateSessionToken(token)
	if err != nil {
		return "", err
	}
	return claims.SessionID, nil
}

// State returns the current view of a session
func (s *ApplicationService) State(ctx context.Context, sessionID string) (*model.FlowView, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return c.View(), nil
}

// SetAnswer records an answer for key
func (s *ApplicationService) SetAnswer(ctx context.Context, sessionID, key, value string) (*model.FlowView, error) {
	return s.mutate(ctx, sessionID, func(c *flow.Controller) error {
		return c.SetAnswer(key, value)
	})
}

// Advance moves to the next step. A refused move before the review step
// returns ErrValidationGap; on the review step it is a no-op.
func (s *ApplicationService) Advance(ctx context.Context, sessionID string) (*model.FlowView, error) {
	return s.mutate(ctx, sessionID, func(c *flow.Controller) error {
		if c.Advance() {
			return nil
		}
		if c.Status() == model.StatusSubmitting {
			return flow.ErrSubmitInFlight
		}
		if c.Step() < s.questionnaire.Len() {
			return flow.ErrValidationGap
		}
		return nil
	})
}

// Retreat moves to the previous step; a no-op on the first step
func (s *ApplicationService) Retreat(ctx context.Context, sessionID string) (*model.FlowView, error) {
	return s.mutate(ctx, sessionID, func(c *flow.Controller) error {
		if !c.Retreat() && c.Status() == model.StatusSubmitting {
			return flow.ErrSubmitInFlight
		}
		return nil
	})
}

// Restart discards the session's answers
func (s *ApplicationService) Restart(ctx context.Context, sessionID string) (*model.FlowView, error) {
	return s.mutate(ctx, sessionID, func(c *flow.Controller) error {
		return c.Restart()
	})
}

// Submit sends the session's answers. The submitting status is stored before
// the submitter is called so a concurrent Submit on the same session is
// rejected with ErrSubmitInFlight. On failure the returned view carries the
// failed status alongside an error wrapping flow.ErrSubmission.
func (s *ApplicationService) Submit(ctx context.Context, sessionID string) (*model.FlowView, error) {
	answers, err := s.beginSubmit(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.submitTimeout)
	var submitErr error
	if s.submitter == nil {
		submitErr = errors.New("no submission endpoint configured")
	} else {
		submitErr = s.submitter.Submit(submitCtx, answers)
	}
	cancel()

	return s.finishSubmit(ctx, sessionID, submitErr)
}

func (s *ApplicationService) beginSubmit(ctx context.Context, sessionID string) (model.AnswerSet, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	answers, err := c.BeginSubmit()
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return answers, nil
}

func (s *ApplicationService) finishSubmit(ctx context.Context, sessionID string, submitErr error) (*model.FlowView, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	logger := log.WithField("session", sessionID)
	c, err := s.load(ctx, sessionID)
	if err != nil {
		logger.WithError(err).Error("session lost while submitting")
		return nil, err
	}

	result := c.FinishSubmit(submitErr)
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}

	view := c.View()
	if result != nil {
		logger.WithError(submitErr).Warn("submission failed")
		s.broadcast(sessionID, MsgSubmissionResult, SubmissionResult{Success: false, Error: view.LastError})
		return view, result
	}
	logger.Info("submission accepted")
	s.broadcast(sessionID, MsgSubmissionResult, SubmissionResult{Success: true})
	return view, nil
}

// mutate applies fn under the session lock and stores the result
func (s *ApplicationService) mutate(ctx context.Context, sessionID string, fn func(c *flow.Controller) error) (*model.FlowView, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.save(ctx, c); err != nil {
		return nil, err
	}
	return c.View(), nil
}

func (s *ApplicationService) controller(state *model.FlowState) (*flow.Controller, error) {
	c, err := flow.NewController(s.questionnaire, s.submitter)
	if err != nil {
		return nil, err
	}
	if err := c.Restore(state); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ApplicationService) load(ctx context.Context, sessionID string) (*flow.Controller, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if state == nil {
		return nil, ErrSessionNotFound
	}

	c, err := s.controller(state)
	if err != nil {
		return nil, err
	}

	// A submission left pending by a crashed or timed-out caller would freeze the session forever.
	if state.SubmissionStatus == model.StatusSubmitting && s.now().Sub(state.UpdatedAt) > 2*s.submitTimeout {
		_ = c.FinishSubmit(errors.New(errInterrupted))
		log.WithField("session", sessionID).Warn("stale submission marked as failed")
	}
	return c, nil
}

func (s *ApplicationService) save(ctx context.Context, c *flow.Controller) error {
	state := c.State()
	if err := s.sessions.Set(ctx, state); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	s.broadcast(state.SessionID, MsgState, c.View())
	return nil
}

func (s *ApplicationService) broadcast(sessionID, msgType string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastToSession(sessionID, msgType, payload)
	}
}

// keyedMutex serialises operations per session id
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock acquires the lock for key and returns its release function
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
