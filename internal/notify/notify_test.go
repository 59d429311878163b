package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"syntexapply/internal/model"
)

func testSubmission() *model.Submission {
	return &model.Submission{
		ID: "sub-1",
		Answers: model.AnswerSet{
			"weeklyHours": "20",
			"fullName":    "Ada <Lovelace>",
			"zeta":        "extra",
			"location":    "",
		},
		SubmittedAt: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

var testOrder = []string{"fullName", "location", "weeklyHours"}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Weekly Hours", Label("weeklyHours"))
	assert.Equal(t, "Full Name", Label("fullName"))
	assert.Equal(t, "Submitted At", Label("submittedAt"))
	assert.Equal(t, "Location", Label("location"))
}

func TestFieldsOrder(t *testing.T) {
	fields := Fields(testSubmission(), testOrder)
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Key
	}
	assert.Equal(t, []string{"fullName", "location", "weeklyHours", "zeta", "submittedAt"}, keys)
	assert.Equal(t, "2025-05-01T09:00:00Z", fields[len(fields)-1].Value)
}

type fakeEmailSender struct {
	req *resend.SendEmailRequest
	err error
}

func (f *fakeEmailSender) SendWithContext(_ context.Context, req *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return &resend.SendEmailResponse{Id: "email-1"}, nil
}

func TestEmailNotifier(t *testing.T) {
	sender := &fakeEmailSender{}
	n, err := NewEmailNotifier(sender, "apply@example.com", "hr@example.com", "New Job Application", testOrder)
	require.NoError(t, err)
	assert.Equal(t, "email", n.Name())

	require.NoError(t, n.Notify(context.Background(), testSubmission()))
	require.NotNil(t, sender.req)
	assert.Equal(t, []string{"hr@example.com"}, sender.req.To)
	assert.Equal(t, "New Job Application", sender.req.Subject)
	assert.Contains(t, sender.req.Html, "<strong>Weekly Hours:</strong> 20")
	assert.Contains(t, sender.req.Html, "<strong>Location:</strong> <i>No answer</i>")
	assert.Contains(t, sender.req.Html, "Ada &lt;Lovelace&gt;")
	assert.Less(t, strings.Index(sender.req.Html, "Full Name"), strings.Index(sender.req.Html, "Weekly Hours"))
}

func TestEmailNotifierError(t *testing.T) {
	sender := &fakeEmailSender{err: errors.New("rate limited")}
	n, err := NewEmailNotifier(sender, "a@example.com", "b@example.com", "s", nil)
	require.NoError(t, err)
	err = n.Notify(context.Background(), testSubmission())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestEmailNotifierRequiresAddresses(t *testing.T) {
	_, err := NewEmailNotifier(&fakeEmailSender{}, "", "b@example.com", "s", nil)
	assert.Error(t, err)
	_, err = NewResendNotifier("", "a@example.com", "b@example.com", "s", nil)
	assert.Error(t, err)
}

type fakeMessageCreator struct {
	params *twilioApi.CreateMessageParams
	err    error
}

func (f *fakeMessageCreator) CreateMessage(p *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error) {
	f.params = p
	if f.err != nil {
		return nil, f.err
	}
	return &twilioApi.ApiV2010Message{}, nil
}

func TestTwilioNotifier(t *testing.T) {
	client := &fakeMessageCreator{}
	n, err := NewTwilioNotifier(client, "+15550001", "+15550002", testOrder)
	require.NoError(t, err)
	assert.Equal(t, "twilio", n.Name())

	require.NoError(t, n.Notify(context.Background(), testSubmission()))
	require.NotNil(t, client.params)
	assert.Equal(t, "+15550002", *client.params.To)
	assert.Equal(t, "+15550001", *client.params.From)
	body := *client.params.Body
	assert.True(t, strings.HasPrefix(body, "New job application"))
	assert.Contains(t, body, "Location: -")
	assert.Contains(t, body, "Weekly Hours: 20")
}

func TestTwilioNotifierTruncates(t *testing.T) {
	n, err := NewTwilioNotifier(&fakeMessageCreator{}, "a", "b", nil)
	require.NoError(t, err)
	s := &model.Submission{Answers: model.AnswerSet{}}
	for _, k := range []string{"a", "b", "c", "d"} {
		s.Answers[k] = strings.Repeat("x", 600)
	}
	body := n.Summary(s)
	assert.LessOrEqual(t, len(body), maxSMSBody+len("\n…"))
	assert.True(t, strings.HasSuffix(body, "…"))
}

func TestTwilioNotifierError(t *testing.T) {
	n, err := NewTwilioNotifier(&fakeMessageCreator{err: errors.New("unreachable")}, "a", "b", nil)
	require.NoError(t, err)
	assert.Error(t, n.Notify(context.Background(), testSubmission()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.Notify(ctx, testSubmission()), context.Canceled)
}
