package model

import "time"

// AnswerSet maps question key to the applicant's answer.
// A key is present only once a value has been supplied for that step.
type AnswerSet map[string]string

// Clone returns an independent copy
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// SubmittedAtField is the record field holding the server-assigned timestamp
const SubmittedAtField = "submittedAt"

// Submission is one finished application as accepted by the submission endpoint
type Submission struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Answers     AnswerSet `json:"answers" bson:"answers"`
	SubmittedAt time.Time `json:"submittedAt" bson:"submittedAt"`
}

// Record flattens the submission into the durable log shape:
// the answers plus a submittedAt timestamp.
func (s *Submission) Record() map[string]string {
	rec := make(map[string]string, len(s.Answers)+1)
	for k, v := range s.Answers {
		rec[k] = v
	}
	rec[SubmittedAtField] = s.SubmittedAt.UTC().Format(time.RFC3339Nano)
	return rec
}

// SubmissionReceipt is returned to the caller of the submission endpoint
type SubmissionReceipt struct {
	Success     bool      `json:"success"`
	ID          string    `json:"id,omitempty"`
	SubmittedAt time.Time `json:"submittedAt,omitzero"`
	Error       string    `json:"error,omitempty"`
}
