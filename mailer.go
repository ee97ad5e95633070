package email

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lattiq/email/internal/core"
)

// Type aliases re-exporting core types for the public API.
type (
	Address         = core.Address
	Recipients      = core.Recipients
	Message         = core.Message
	Transport       = core.Transport
	Options         = core.Settings
	TransportError  = core.TransportError
	ValidationError = core.ValidationError
)

// IsTemporary reports whether err is a transient delivery failure.
var IsTemporary = core.IsTemporary

// Mailer accumulates the parts of an outgoing email and dispatches it
// through the transport fixed at construction. Builder methods return the
// Mailer for chaining.
//
// A Mailer is not safe for concurrent mutation.
type Mailer struct {
	name      string
	driver    string
	transport Transport
	tracer    trace.Tracer
	log       logrus.FieldLogger

	from    Address
	to      Recipients
	cc      Recipients
	bcc     Recipients
	subject string
	message string
	html    bool
}

func newMailer(name, driver string, transport Transport, tracer trace.Tracer, log logrus.FieldLogger) *Mailer {
	return &Mailer{
		name:      name,
		driver:    driver,
		transport: transport,
		tracer:    tracer,
		log:       log,
	}
}

// Name returns the instance name the mailer was registered under.
func (m *Mailer) Name() string { return m.name }

// Driver returns the configured driver name.
func (m *Mailer) Driver() string { return m.driver }

// Transport returns the transport the mailer sends through.
func (m *Mailer) Transport() Transport { return m.transport }

// From sets the sender, replacing any previous one. An empty name means
// no display name.
func (m *Mailer) From(email, name string) *Mailer {
	m.from = Address{Email: email, Name: name}
	return m
}

// To adds a primary recipient.
func (m *Mailer) To(email, name string) *Mailer {
	m.to.Add(email, name)
	return m
}

// Cc adds a carbon copy recipient.
func (m *Mailer) Cc(email, name string) *Mailer {
	m.cc.Add(email, name)
	return m
}

// Bcc adds a blind carbon copy recipient.
func (m *Mailer) Bcc(email, name string) *Mailer {
	m.bcc.Add(email, name)
	return m
}

// Subject sets the subject.
func (m *Mailer) Subject(text string) *Mailer {
	m.subject = text
	return m
}

// Message sets the body and whether it is HTML.
func (m *Mailer) Message(body string, html bool) *Mailer {
	m.message = body
	m.html = html
	return m
}

// Reset clears the to, cc and bcc lists. Sender, subject and body are kept.
func (m *Mailer) Reset() *Mailer {
	m.to = nil
	m.cc = nil
	m.bcc = nil
	return m
}

// Compose builds the message Send would dispatch from the current state.
// Recipient classes with no entries are left unset.
func (m *Mailer) Compose() *Message {
	contentType := core.ContentTypePlain
	if m.html {
		contentType = core.ContentTypeHTML
	}

	msg := core.NewMessage(m.subject, m.message, contentType, core.CharsetUTF8).
		SetFrom(m.from)
	if len(m.to) > 0 {
		msg.SetTo(m.to)
	}
	if len(m.cc) > 0 {
		msg.SetCc(m.cc)
	}
	if len(m.bcc) > 0 {
		msg.SetBcc(m.bcc)
	}
	return msg
}

// Send composes the message and hands it to the transport once. Transport
// failures are returned as is; builder state is left untouched.
//
// Send ends a chain: it returns only the error, not the Mailer. Recipients
// accumulate across sends, so call Reset before addressing the next message.
// A malformed sender or recipient address fails with a *ValidationError
// before the transport is reached.
func (m *Mailer) Send(ctx context.Context) error {
	ctx, span := m.tracer.Start(ctx, "email.Mailer.Send")
	defer span.End()

	msg := m.Compose()

	span.SetAttributes(
		attribute.String("email.instance", m.name),
		attribute.String("email.driver", m.transport.Name()),
		attribute.String("email.from", msg.From.Email),
		attribute.Int("email.recipients", msg.TotalRecipients()),
		attribute.Bool("email.html", msg.IsHTML()),
	)

	log := m.log.WithFields(logrus.Fields{
		"instance":   m.name,
		"driver":     m.transport.Name(),
		"recipients": msg.TotalRecipients(),
	})

	if err := msg.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid address")
		log.WithError(err).Warn("email not sent")
		return err
	}

	if err := m.transport.Send(ctx, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "send failed")
		log.WithError(err).Warn("email send failed")
		return err
	}

	span.SetStatus(codes.Ok, "email sent")
	log.Debug("email sent")
	return nil
}
