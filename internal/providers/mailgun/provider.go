package mailgun

import (
	"context"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/lattiq/email/internal/core"
)

// Name is the driver name of this transport.
const Name = "mailgun"

// Options configures the Mailgun transport.
type Options struct {
	APIKey  string
	Domain  string
	BaseURL string
}

// ParseOptions reads Mailgun options from driver settings.
func ParseOptions(settings core.Settings) (Options, error) {
	opts := Options{
		APIKey:  settings.String("api_key"),
		Domain:  settings.String("domain"),
		BaseURL: settings.String("base_url"),
	}
	if opts.APIKey == "" {
		return Options{}, core.NewValidationError("api_key", "Mailgun API key is required")
	}
	if opts.Domain == "" {
		return Options{}, core.NewValidationError("domain", "Mailgun domain is required")
	}
	return opts, nil
}

// API is the subset of the Mailgun client used by the provider.
type API interface {
	Send(ctx context.Context, m *mailgun.Message) (string, string, error)
}

// Provider implements core.Transport for Mailgun.
type Provider struct {
	client API
}

// New creates a new Mailgun provider.
func New(opts Options) (*Provider, error) {
	if opts.APIKey == "" || opts.Domain == "" {
		return nil, core.NewValidationError("api_key", "Mailgun API key and domain are required")
	}

	client := mailgun.NewMailgun(opts.Domain, opts.APIKey)

	// Set base URL if provided (for EU customers)
	if opts.BaseURL != "" {
		client.SetAPIBase(opts.BaseURL)
	}

	return NewWithClient(client), nil
}

// NewWithClient creates a provider around an existing client.
func NewWithClient(client API) *Provider {
	return &Provider{client: client}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return Name
}

// Send sends msg using Mailgun.
func (p *Provider) Send(ctx context.Context, msg *core.Message) error {
	text := msg.Body
	if msg.IsHTML() {
		text = ""
	}

	message := mailgun.NewMessage(msg.From.String(), msg.Subject, text)
	if msg.IsHTML() {
		message.SetHTML(msg.Body)
	}

	for _, to := range msg.To {
		if err := message.AddRecipient(to.String()); err != nil {
			return core.NewTransportError(Name, "recipient", fmt.Errorf("add recipient %s: %w", to.Email, err))
		}
	}
	for _, cc := range msg.Cc {
		message.AddCC(cc.String())
	}
	for _, bcc := range msg.Bcc {
		message.AddBCC(bcc.String())
	}

	if _, _, err := p.client.Send(ctx, message); err != nil {
		return core.NewTransportError(Name, "send", err)
	}

	return nil
}
