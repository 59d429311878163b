package service

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"syntexapply/internal/model"
	"syntexapply/internal/questionnaire"
	"syntexapply/internal/repository"
)

// QuestionnaireService resolves the questionnaire served to applicants.
// Sources are tried in order: the Mongo document, a YAML file, the embedded default.
type QuestionnaireService struct {
	repo repository.QuestionnaireRepo
	id   string
	file string
}

// NewQuestionnaireService creates a questionnaire service; repo and file may be empty
func NewQuestionnaireService(repo repository.QuestionnaireRepo, id, file string) *QuestionnaireService {
	return &QuestionnaireService{
		repo: repo,
		id:   id,
		file: file,
	}
}

// Load returns the first valid questionnaire found
func (s *QuestionnaireService) Load(ctx context.Context) (*model.Questionnaire, error) {
	if s.repo != nil {
		q, err := s.repo.GetByID(ctx, s.id)
		switch {
		case err != nil:
			log.WithError(err).WithField("questionnaire", s.id).Warn("failed to load questionnaire from mongo")
		case q == nil:
			log.WithField("questionnaire", s.id).Debug("questionnaire not stored in mongo")
		default:
			if err := q.Validate(); err != nil {
				log.WithError(err).WithField("questionnaire", s.id).Warn("stored questionnaire is invalid")
			} else {
				return q, nil
			}
		}
	}

	if s.file != "" {
		q, err := questionnaire.LoadFile(s.file)
		if err != nil {
			return nil, fmt.Errorf("failed to load questions file: %w", err)
		}
		return q, nil
	}

	return questionnaire.Default()
}

// Seed stores q in Mongo under the configured id
func (s *QuestionnaireService) Seed(ctx context.Context, q *model.Questionnaire) error {
	if s.repo == nil {
		return errors.New("no questionnaire store configured")
	}
	if err := q.Validate(); err != nil {
		return err
	}
	q.ID = s.id
	return s.repo.Upsert(ctx, q)
}
