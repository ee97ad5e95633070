package ses

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/lattiq/email/internal/core"
)

// Name is the driver name of this transport.
const Name = "ses"

// Options configures the AWS SES transport.
type Options struct {
	Region           string
	AccessKey        string
	SecretKey        string
	SessionToken     string
	ConfigurationSet string
}

// ParseOptions reads SES options from driver settings.
func ParseOptions(settings core.Settings) (Options, error) {
	opts := Options{
		Region:           settings.String("region"),
		AccessKey:        settings.String("access_key"),
		SecretKey:        settings.String("secret_key"),
		SessionToken:     settings.String("session_token"),
		ConfigurationSet: settings.String("configuration_set"),
	}
	if opts.Region == "" {
		return Options{}, core.NewValidationError("region", "AWS region is required")
	}
	if opts.AccessKey != "" && opts.SecretKey == "" {
		return Options{}, core.NewValidationError("secret_key", "secret key is required when access key is provided")
	}
	return opts, nil
}

// API is the subset of the SES client used by the provider.
type API interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// Provider sends the MIME encoded message through SES SendRawEmail, so the
// message is delivered exactly as the other transports would write it.
type Provider struct {
	client API
	opts   Options
}

// New loads the AWS configuration and creates an SES provider.
func New(ctx context.Context, opts Options) (*Provider, error) {
	if opts.Region == "" {
		return nil, core.NewValidationError("region", "AWS region is required")
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	if err != nil {
		return nil, core.DependencyError(Name, err)
	}

	// Override with explicit credentials if provided
	if opts.AccessKey != "" {
		accessKey, secretKey, token := opts.AccessKey, opts.SecretKey, opts.SessionToken
		cfg.Credentials = aws.CredentialsProviderFunc(func(ctx context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
				SessionToken:    token,
			}, nil
		})
	}

	return NewWithClient(ses.NewFromConfig(cfg), opts), nil
}

// NewWithClient creates a provider around an existing client.
func NewWithClient(client API, opts Options) *Provider {
	return &Provider{client: client, opts: opts}
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return Name
}

// Send sends msg with SendRawEmail. Destinations carry every envelope
// recipient, Bcc included.
func (p *Provider) Send(ctx context.Context, msg *core.Message) error {
	raw, err := msg.Bytes()
	if err != nil {
		return core.NewTransportError(Name, "compose", err)
	}

	from, rcpts := msg.Envelope()
	input := &ses.SendRawEmailInput{
		RawMessage:   &types.RawMessage{Data: raw},
		Destinations: rcpts,
	}
	if from != "" {
		input.Source = aws.String(from)
	}
	if p.opts.ConfigurationSet != "" {
		input.ConfigurationSetName = aws.String(p.opts.ConfigurationSet)
	}

	if _, err := p.client.SendRawEmail(ctx, input); err != nil {
		return core.NewTransportError(Name, "send", err)
	}

	return nil
}
