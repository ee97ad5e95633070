package providers

import (
	"context"
	"strings"

	"github.com/lattiq/email/internal/core"
	"github.com/lattiq/email/internal/providers/mailgun"
	"github.com/lattiq/email/internal/providers/postmark"
	"github.com/lattiq/email/internal/providers/sendgrid"
	"github.com/lattiq/email/internal/providers/sendmail"
	"github.com/lattiq/email/internal/providers/ses"
	"github.com/lattiq/email/internal/providers/smtp"
)

// Kind identifies the transport family selected by a driver name.
type Kind int

const (
	// KindNative delivers through the local sendmail binary. Every driver
	// name without a dedicated transport selects it.
	KindNative Kind = iota
	KindSMTP
	KindSES
	KindSendGrid
	KindMailgun
	KindPostmark
)

// String returns the canonical driver name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSMTP:
		return smtp.Name
	case KindSES:
		return ses.Name
	case KindSendGrid:
		return sendgrid.Name
	case KindMailgun:
		return mailgun.Name
	case KindPostmark:
		return postmark.Name
	default:
		return sendmail.Name
	}
}

// KindOf maps a configured driver name to its transport family.
func KindOf(driver string) Kind {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case smtp.Name:
		return KindSMTP
	case ses.Name:
		return KindSES
	case sendgrid.Name:
		return KindSendGrid
	case mailgun.Name:
		return KindMailgun
	case postmark.Name:
		return KindPostmark
	default:
		return KindNative
	}
}

// Validate parses the driver options without building any client.
func Validate(driver string, settings core.Settings) error {
	var err error
	switch KindOf(driver) {
	case KindSMTP:
		_, err = smtp.ParseOptions(settings)
	case KindSES:
		_, err = ses.ParseOptions(settings)
	case KindSendGrid:
		_, err = sendgrid.ParseOptions(settings)
	case KindMailgun:
		_, err = mailgun.ParseOptions(settings)
	case KindPostmark:
		_, err = postmark.ParseOptions(settings)
	default:
		_, err = sendmail.ParseOptions(settings)
	}
	return err
}

// New creates the transport for driver from its settings.
func New(ctx context.Context, driver string, settings core.Settings) (core.Transport, error) {
	var (
		t   core.Transport
		err error
	)
	switch KindOf(driver) {
	case KindSMTP:
		var opts smtp.Options
		if opts, err = smtp.ParseOptions(settings); err == nil {
			t, err = newSMTP(opts)
		}
	case KindSES:
		var opts ses.Options
		if opts, err = ses.ParseOptions(settings); err == nil {
			t, err = newSES(ctx, opts)
		}
	case KindSendGrid:
		var opts sendgrid.Options
		if opts, err = sendgrid.ParseOptions(settings); err == nil {
			t, err = newSendGrid(opts)
		}
	case KindMailgun:
		var opts mailgun.Options
		if opts, err = mailgun.ParseOptions(settings); err == nil {
			t, err = newMailgun(opts)
		}
	case KindPostmark:
		var opts postmark.Options
		if opts, err = postmark.ParseOptions(settings); err == nil {
			t, err = newPostmark(opts)
		}
	default:
		var opts sendmail.Options
		if opts, err = sendmail.ParseOptions(settings); err == nil {
			t, err = newSendmail(opts)
		}
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func newSMTP(opts smtp.Options) (core.Transport, error) {
	p, err := smtp.New(opts)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newSES(ctx context.Context, opts ses.Options) (core.Transport, error) {
	p, err := ses.New(ctx, opts)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newSendGrid(opts sendgrid.Options) (core.Transport, error) {
	p, err := sendgrid.New(opts)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newMailgun(opts mailgun.Options) (core.Transport, error) {
	p, err := mailgun.New(opts)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newPostmark(opts postmark.Options) (core.Transport, error) {
	p, err := postmark.New(opts)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newSendmail(opts sendmail.Options) (core.Transport, error) {
	p, err := sendmail.New(opts)
	if err != nil {
		return nil, err
	}
	return p, nil
}
