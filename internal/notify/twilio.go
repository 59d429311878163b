package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"syntexapply/internal/model"
)

// maxSMSBody keeps a summary within Twilio's concatenated message limit
const maxSMSBody = 1500

// MessageCreator is the part of the Twilio REST client used to send messages
type MessageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioNotifier texts a short summary of each submission to a reviewer.
// Numbers prefixed with "whatsapp:" are delivered over WhatsApp.
type TwilioNotifier struct {
	client MessageCreator
	from   string
	to     string
	order  []string
}

// NewTwilioNotifier creates a notifier around an existing client
func NewTwilioNotifier(client MessageCreator, from, to string, order []string) (*TwilioNotifier, error) {
	if client == nil {
		return nil, errors.New("twilio client is required")
	}
	if from == "" || to == "" {
		return nil, errors.New("twilio from and to numbers are required")
	}
	return &TwilioNotifier{client: client, from: from, to: to, order: order}, nil
}

// NewTwilioRESTNotifier builds a TwilioNotifier from account credentials
func NewTwilioRESTNotifier(accountSID, authToken, from, to string, order []string) (*TwilioNotifier, error) {
	if accountSID == "" || authToken == "" {
		return nil, errors.New("account SID and auth token must be provided")
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return NewTwilioNotifier(client.Api, from, to, order)
}

// Name identifies the channel
func (n *TwilioNotifier) Name() string { return "twilio" }

// Notify sends the summary message
func (n *TwilioNotifier) Notify(ctx context.Context, s *model.Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(n.Summary(s))

	if _, err := n.client.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", n.to, err)
	}
	return nil
}

// Summary renders the plain-text message body
func (n *TwilioNotifier) Summary(s *model.Submission) string {
	var b strings.Builder
	b.WriteString("New job application")
	for _, f := range Fields(s, n.order) {
		value := f.Value
		if value == "" {
			value = "-"
		}
		line := fmt.Sprintf("\n%s: %s", f.Label, value)
		if b.Len()+len(line) > maxSMSBody {
			b.WriteString("\n…")
			break
		}
		b.WriteString(line)
	}
	return b.String()
}
