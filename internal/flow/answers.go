// Package flow sequences an applicant through a questionnaire one step at a time.
package flow

import "syntexapply/internal/model"

// AnswerStore holds the answers of one session.
// It is owned by a Controller, which serialises every access.
type AnswerStore struct {
	answers model.AnswerSet
}

// NewAnswerStore creates an empty store
func NewAnswerStore() *AnswerStore {
	return &AnswerStore{answers: model.AnswerSet{}}
}

// Get returns the stored value for key
func (s *AnswerStore) Get(key string) (string, bool) {
	v, ok := s.answers[key]
	return v, ok
}

// Set stores value verbatim, overwriting any previous answer
func (s *AnswerStore) Set(key, value string) {
	s.answers[key] = value
}

// Reset clears all answers
func (s *AnswerStore) Reset() {
	s.answers = model.AnswerSet{}
}

// Len returns the number of stored answers
func (s *AnswerStore) Len() int {
	return len(s.answers)
}

// Snapshot returns a copy of the stored answers
func (s *AnswerStore) Snapshot() model.AnswerSet {
	return s.answers.Clone()
}
