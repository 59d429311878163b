package model

import (
	"errors"
	"fmt"
)

// InputKind defines how a question is answered
type InputKind string

const (
	InputSingleChoice InputKind = "single-choice" // One of Choices
	InputFreeText     InputKind = "free-text"     // Multi-line text
	InputShortText    InputKind = "short-text"    // Single-line text, optional Constraints
)

// Constraints are rendering hints for short-text questions.
// The flow never interprets them; they are passed through to the client as-is.
type Constraints struct {
	Type        string `json:"type,omitempty" yaml:"type,omitempty" bson:"type,omitempty"` // e.g. "text", "number"
	Min         *int   `json:"min,omitempty" yaml:"min,omitempty" bson:"min,omitempty"`
	Max         *int   `json:"max,omitempty" yaml:"max,omitempty" bson:"max,omitempty"`
	Placeholder string `json:"placeholder,omitempty" yaml:"placeholder,omitempty" bson:"placeholder,omitempty"`
}

// Question is one immutable step of a questionnaire
type Question struct {
	Key         string       `json:"key" yaml:"key" bson:"key"`
	Prompt      string       `json:"prompt" yaml:"prompt" bson:"prompt"`
	Kind        InputKind    `json:"inputKind" yaml:"inputKind" bson:"inputKind"`
	Choices     []string     `json:"choices,omitempty" yaml:"choices,omitempty" bson:"choices,omitempty"`             // single-choice only
	Constraints *Constraints `json:"constraints,omitempty" yaml:"constraints,omitempty" bson:"constraints,omitempty"` // short-text only
}

// HasChoice reports whether value is one of the declared choices
func (q Question) HasChoice(value string) bool {
	for _, c := range q.Choices {
		if c == value {
			return true
		}
	}
	return false
}

// Validate checks the shape of a single question
func (q Question) Validate() error {
	if q.Key == "" {
		return errors.New("question key is required")
	}
	switch q.Kind {
	case InputSingleChoice:
		if len(q.Choices) == 0 {
			return fmt.Errorf("question %q: single-choice needs at least one choice", q.Key)
		}
		if q.Constraints != nil {
			return fmt.Errorf("question %q: constraints are only allowed on short-text", q.Key)
		}
	case InputFreeText, InputShortText:
		if len(q.Choices) > 0 {
			return fmt.Errorf("question %q: choices are only allowed on single-choice", q.Key)
		}
		if q.Kind == InputFreeText && q.Constraints != nil {
			return fmt.Errorf("question %q: constraints are only allowed on short-text", q.Key)
		}
	default:
		return fmt.Errorf("question %q: unknown input kind %q", q.Key, q.Kind)
	}
	return nil
}
