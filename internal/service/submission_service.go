package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"syntexapply/internal/metrics"
	"syntexapply/internal/model"
	"syntexapply/internal/notify"
)

var (
	ErrNotAccepted = errors.New("your application could not be saved or delivered, please try again later")
)

// Recorder durably stores a submission (file log, Mongo mirror)
type Recorder interface {
	Name() string
	Record(ctx context.Context, s *model.Submission) error
}

// SubmissionService is the server side of the submission endpoint.
// Each submission is recorded, then relayed; it is accepted when at least one
// sink took it.
type SubmissionService struct {
	recorders []Recorder
	notifiers []notify.Notifier

	now   func() time.Time
	newID func() string
}

// NewSubmissionService creates a submission service over the given sinks
func NewSubmissionService(recorders []Recorder, notifiers []notify.Notifier) *SubmissionService {
	return &SubmissionService{
		recorders: recorders,
		notifiers: notifiers,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.New().String() },
	}
}

// Submit stamps the answers, records them and relays them to reviewers
func (s *SubmissionService) Submit(ctx context.Context, answers model.AnswerSet) (*model.SubmissionReceipt, error) {
	sub := &model.Submission{
		ID:          s.newID(),
		Answers:     answers.Clone(),
		SubmittedAt: s.now(),
	}
	logger := log.WithField("submission", sub.ID)

	var errs []error
	accepted := false

	for _, r := range s.recorders {
		if err := r.Record(ctx, sub); err != nil {
			logger.WithError(err).WithField("sink", r.Name()).Error("failed to record submission")
			metrics.RecordSink(r.Name(), false)
			errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
			continue
		}
		metrics.RecordSink(r.Name(), true)
		accepted = true
	}

	for _, n := range s.notifiers {
		if err := n.Notify(ctx, sub); err != nil {
			logger.WithError(err).WithField("sink", n.Name()).Warn("failed to relay submission")
			metrics.RecordSink(n.Name(), false)
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		metrics.RecordSink(n.Name(), true)
		accepted = true
	}

	metrics.RecordSubmission(accepted)
	if !accepted {
		if len(errs) == 0 {
			errs = append(errs, errors.New("no submission sinks configured"))
		}
		return nil, fmt.Errorf("%w: %w", ErrNotAccepted, errors.Join(errs...))
	}

	logger.WithField("answers", len(sub.Answers)).Info("application accepted")
	return &model.SubmissionReceipt{
		Success:     true,
		ID:          sub.ID,
		SubmittedAt: sub.SubmittedAt,
	}, nil
}

// LocalSubmitter hands answers straight to a SubmissionService in the same process
type LocalSubmitter struct {
	svc *SubmissionService
}

// NewLocalSubmitter creates an in-process submitter
func NewLocalSubmitter(svc *SubmissionService) *LocalSubmitter {
	return &LocalSubmitter{svc: svc}
}

// Submit implements flow.Submitter. Sink details are logged by the service and
// kept out of the error shown to the applicant.
func (l *LocalSubmitter) Submit(ctx context.Context, answers model.AnswerSet) error {
	_, err := l.svc.Submit(ctx, answers)
	if errors.Is(err, ErrNotAccepted) {
		return ErrNotAccepted
	}
	return err
}
