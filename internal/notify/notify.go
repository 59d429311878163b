// Package notify relays accepted submissions to a human reviewer.
package notify

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"syntexapply/internal/model"
)

// Notifier delivers a submission over one out-of-band channel
type Notifier interface {
	Name() string
	Notify(ctx context.Context, s *model.Submission) error
}

// Field is one labelled line of a notification
type Field struct {
	Key   string
	Label string
	Value string
}

var upperRun = regexp.MustCompile(`([A-Z])`)

// Label turns a camelCase key into a display label: "weeklyHours" -> "Weekly Hours"
func Label(key string) string {
	spaced := strings.TrimSpace(upperRun.ReplaceAllString(key, " $1"))
	return cases.Title(language.English, cases.NoLower).String(spaced)
}

// Fields lists the answers in questionnaire order, then any unknown keys
// sorted, then the submission timestamp.
func Fields(s *model.Submission, order []string) []Field {
	seen := make(map[string]bool, len(order))
	fields := make([]Field, 0, len(s.Answers)+1)
	for _, k := range order {
		if v, ok := s.Answers[k]; ok {
			fields = append(fields, Field{Key: k, Label: Label(k), Value: v})
			seen[k] = true
		}
	}

	var rest []string
	for k := range s.Answers {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		fields = append(fields, Field{Key: k, Label: Label(k), Value: s.Answers[k]})
	}

	rec := s.Record()
	fields = append(fields, Field{
		Key:   model.SubmittedAtField,
		Label: Label(model.SubmittedAtField),
		Value: rec[model.SubmittedAtField],
	})
	return fields
}
