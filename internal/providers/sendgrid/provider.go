package sendgrid

import (
	"context"
	"fmt"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/lattiq/email/internal/core"
)

// Name is the driver name of this transport.
const Name = "sendgrid"

// Options configures the SendGrid transport.
type Options struct {
	APIKey string
}

// ParseOptions reads SendGrid options from driver settings.
func ParseOptions(settings core.Settings) (Options, error) {
	opts := Options{APIKey: settings.String("api_key")}
	if opts.APIKey == "" {
		return Options{}, core.NewValidationError("api_key", "SendGrid API key is required")
	}
	return opts, nil
}

// API is the subset of the SendGrid client used by the provider.
type API interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

// Provider implements core.Transport for the SendGrid v3 API.
type Provider struct {
	client API
}

// New creates a new SendGrid provider.
func New(opts Options) (*Provider, error) {
	if opts.APIKey == "" {
		return nil, core.NewValidationError("api_key", "SendGrid API key is required")
	}
	return NewWithClient(sendgrid.NewSendClient(opts.APIKey)), nil
}

// NewWithClient creates a provider around an existing client.
func NewWithClient(client API) *Provider {
	return &Provider{client: client}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return Name
}

// Send sends msg as a single personalization carrying every recipient class.
func (p *Provider) Send(_ context.Context, msg *core.Message) error {
	response, err := p.client.Send(buildMail(msg))
	if err != nil {
		return core.NewTransportError(Name, "send", err)
	}

	// Check response status
	if response.StatusCode >= 400 {
		apiErr := fmt.Errorf("status %d: %s", response.StatusCode, response.Body)
		if response.StatusCode == 429 || response.StatusCode >= 500 {
			return core.NewTemporaryTransportError(Name, "send", apiErr)
		}
		return core.NewTransportError(Name, "send", apiErr)
	}

	return nil
}

func buildMail(msg *core.Message) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail(msg.From.Name, msg.From.Email))
	m.Subject = msg.Subject

	personalization := mail.NewPersonalization()
	for _, a := range msg.To {
		personalization.AddTos(mail.NewEmail(a.Name, a.Email))
	}
	for _, a := range msg.Cc {
		personalization.AddCCs(mail.NewEmail(a.Name, a.Email))
	}
	for _, a := range msg.Bcc {
		personalization.AddBCCs(mail.NewEmail(a.Name, a.Email))
	}
	m.AddPersonalizations(personalization)

	m.AddContent(mail.NewContent(msg.ContentType, msg.Body))

	return m
}
