package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v2"

	"syntexapply/internal/model"
)

// EmailSender is the part of the Resend client used to send mail
type EmailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

var emailTemplate = template.Must(template.New("application").Parse(`
<h2>{{.Title}}</h2>
<ul style="font-size:16px;line-height:1.7;">
{{- range .Fields}}
  <li><strong>{{.Label}}:</strong> {{if .Value}}{{.Value}}{{else}}<i>No answer</i>{{end}}</li>
{{- end}}
</ul>
`))

// EmailNotifier sends each submission as an HTML email through Resend
type EmailNotifier struct {
	sender  EmailSender
	from    string
	to      []string
	subject string
	order   []string
}

// NewEmailNotifier creates a Resend-backed notifier; order is the questionnaire key order
func NewEmailNotifier(sender EmailSender, from, to, subject string, order []string) (*EmailNotifier, error) {
	if sender == nil {
		return nil, errors.New("email sender is required")
	}
	if from == "" || to == "" {
		return nil, errors.New("email from and to addresses are required")
	}
	return &EmailNotifier{
		sender:  sender,
		from:    from,
		to:      []string{to},
		subject: subject,
		order:   order,
	}, nil
}

// NewResendNotifier builds an EmailNotifier around a Resend API client
func NewResendNotifier(apiKey, from, to, subject string, order []string) (*EmailNotifier, error) {
	if apiKey == "" {
		return nil, errors.New("resend API key is required")
	}
	client := resend.NewClient(apiKey)
	return NewEmailNotifier(client.Emails, from, to, subject, order)
}

// Name identifies the channel
func (n *EmailNotifier) Name() string { return "email" }

// Notify renders and sends the submission
func (n *EmailNotifier) Notify(ctx context.Context, s *model.Submission) error {
	html, err := n.Render(s)
	if err != nil {
		return err
	}
	_, err = n.sender.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      n.to,
		Subject: n.subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("failed to send application email: %w", err)
	}
	return nil
}

// Render produces the HTML body for a submission
func (n *EmailNotifier) Render(s *model.Submission) (string, error) {
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, struct {
		Title  string
		Fields []Field
	}{
		Title:  n.subject,
		Fields: Fields(s, n.order),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render application email: %w", err)
	}
	return buf.String(), nil
}
