package model

import (
	"errors"
	"fmt"
	"time"
)

// Questionnaire is the ordered question set an applicant walks through.
// Order defines step order and never changes for the lifetime of a session.
type Questionnaire struct {
	ID        string     `json:"id" yaml:"id" bson:"_id,omitempty"`
	Title     string     `json:"title" yaml:"title" bson:"title"`
	Questions []Question `json:"questions" yaml:"questions" bson:"questions"`
	UpdatedAt time.Time  `json:"updatedAt,omitempty" yaml:"-" bson:"updatedAt"`
}

// Validate checks every question and that keys are unique
func (q *Questionnaire) Validate() error {
	if len(q.Questions) == 0 {
		return errors.New("questionnaire has no questions")
	}
	seen := make(map[string]struct{}, len(q.Questions))
	for _, question := range q.Questions {
		if err := question.Validate(); err != nil {
			return err
		}
		if _, dup := seen[question.Key]; dup {
			return fmt.Errorf("duplicate question key %q", question.Key)
		}
		seen[question.Key] = struct{}{}
	}
	return nil
}

// Len returns the number of questions
func (q *Questionnaire) Len() int {
	return len(q.Questions)
}

// Lookup finds a question by key
func (q *Questionnaire) Lookup(key string) (Question, bool) {
	for _, question := range q.Questions {
		if question.Key == key {
			return question, true
		}
	}
	return Question{}, false
}
