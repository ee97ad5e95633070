package postmark

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"

	"github.com/lattiq/email/internal/core"
)

// Name is the driver name of this transport.
const Name = "postmark"

// Options configures the Postmark transport.
type Options struct {
	ServerToken  string
	AccountToken string
}

// ParseOptions reads Postmark options from driver settings.
func ParseOptions(settings core.Settings) (Options, error) {
	opts := Options{
		ServerToken:  settings.String("server_token"),
		AccountToken: settings.String("account_token"),
	}
	if opts.ServerToken == "" {
		return Options{}, core.NewValidationError("server_token", "Postmark server token is required")
	}
	return opts, nil
}

// API is the subset of the Postmark client used by the provider.
type API interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// Provider implements core.Transport for Postmark's transactional API.
type Provider struct {
	client API
}

// New creates a new Postmark provider.
func New(opts Options) (*Provider, error) {
	if opts.ServerToken == "" {
		return nil, core.NewValidationError("server_token", "Postmark server token is required")
	}
	return NewWithClient(postmark.NewClient(opts.ServerToken, opts.AccountToken)), nil
}

// NewWithClient creates a provider around an existing client.
func NewWithClient(client API) *Provider {
	return &Provider{client: client}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return Name
}

// Send sends msg through the Postmark email endpoint.
func (p *Provider) Send(ctx context.Context, msg *core.Message) error {
	email := postmark.Email{
		From:    msg.From.String(),
		To:      joinAddresses(msg.To),
		Cc:      joinAddresses(msg.Cc),
		Bcc:     joinAddresses(msg.Bcc),
		Subject: msg.Subject,
	}
	if msg.IsHTML() {
		email.HTMLBody = msg.Body
	} else {
		email.TextBody = msg.Body
	}

	resp, err := p.client.SendEmail(ctx, email)
	if err != nil {
		return core.NewTransportError(Name, "send", err)
	}
	if resp.ErrorCode > 0 {
		return core.NewTransportError(Name, "send", fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}

	return nil
}

func joinAddresses(list core.Recipients) string {
	if len(list) == 0 {
		return ""
	}
	parts := make([]string, len(list))
	for i, a := range list {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
