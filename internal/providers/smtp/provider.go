package smtp

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"

	"github.com/lattiq/email/internal/core"
)

// Name is the driver name of this transport.
const Name = "smtp"

// Defaults applied when the corresponding option is empty.
const (
	DefaultPort    = 25
	DefaultTimeout = 5 * time.Second
)

// Encryption selects how the connection to the server is secured.
type Encryption string

const (
	// EncryptionNone sends in plain text.
	EncryptionNone Encryption = ""

	// EncryptionSSL wraps the connection in TLS from the start (SMTPS, usually port 465).
	EncryptionSSL Encryption = "ssl"

	// EncryptionTLS upgrades a plain connection with STARTTLS (usually port 587).
	EncryptionTLS Encryption = "tls"
)

// Options configures the SMTP transport.
type Options struct {
	Host        string
	Port        int
	Encryption  Encryption
	Username    string
	Password    string
	Timeout     time.Duration
	LocalDomain string
}

// ParseOptions reads SMTP options from driver settings.
func ParseOptions(settings core.Settings) (Options, error) {
	opts := Options{
		Host:        settings.String("hostname"),
		Username:    settings.String("username"),
		Password:    settings.String("password"),
		LocalDomain: settings.String("local_domain"),
	}
	if opts.Host == "" {
		return Options{}, core.NewValidationError("hostname", "SMTP hostname is required")
	}

	port, err := settings.Int("port", DefaultPort)
	if err != nil {
		return Options{}, err
	}
	if port < 1 || port > 65535 {
		return Options{}, core.NewValidationErrorWithValue("port", "must be between 1 and 65535", port)
	}
	opts.Port = port

	timeout, err := settings.Int("timeout", int(DefaultTimeout/time.Second))
	if err != nil {
		return Options{}, err
	}
	if timeout < 0 {
		return Options{}, core.NewValidationErrorWithValue("timeout", "must not be negative", timeout)
	}
	opts.Timeout = time.Duration(timeout) * time.Second

	switch enc := strings.ToLower(settings.String("encryption")); enc {
	case "":
		opts.Encryption = EncryptionNone
	case "ssl":
		opts.Encryption = EncryptionSSL
	case "tls", "starttls":
		opts.Encryption = EncryptionTLS
	default:
		return Options{}, core.NewValidationErrorWithValue("encryption", "unsupported encryption, use ssl or tls", enc)
	}

	return opts, nil
}

// Provider delivers messages to an SMTP server. A new connection is
// opened for every send and closed afterwards.
type Provider struct {
	opts      Options
	tlsConfig *tls.Config
}

// New creates a new SMTP provider.
func New(opts Options) (*Provider, error) {
	if opts.Host == "" {
		return nil, core.NewValidationError("hostname", "SMTP hostname is required")
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	return &Provider{
		opts: opts,
		tlsConfig: &tls.Config{
			ServerName: opts.Host,
			MinVersion: tls.VersionTLS12,
		},
	}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return Name
}

// Options returns the options the provider was built with.
func (p *Provider) Options() Options {
	return p.opts
}

// Addr returns the host:port the provider connects to.
func (p *Provider) Addr() string {
	return net.JoinHostPort(p.opts.Host, strconv.Itoa(p.opts.Port))
}

// WithTLSConfig replaces the TLS configuration used for ssl and tls encryption.
func (p *Provider) WithTLSConfig(cfg *tls.Config) *Provider {
	p.tlsConfig = cfg
	return p
}

// Send connects, authenticates when credentials are configured, transmits
// msg and disconnects.
func (p *Provider) Send(ctx context.Context, msg *core.Message) error {
	c, err := p.dial(ctx)
	if err != nil {
		return core.NewTransportError(Name, "dial", err)
	}
	defer func() { _ = c.Close() }()

	if p.opts.Username != "" {
		if err := c.Auth(sasl.NewPlainClient("", p.opts.Username, p.opts.Password)); err != nil {
			return wrapSMTPError("auth", err)
		}
	}

	from, rcpts := msg.Envelope()
	if err := c.Mail(from, nil); err != nil {
		return wrapSMTPError("mail", err)
	}
	for _, rcpt := range rcpts {
		if err := c.Rcpt(rcpt, nil); err != nil {
			return wrapSMTPError("rcpt", err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return wrapSMTPError("data", err)
	}
	if _, err := msg.WriteTo(w); err != nil {
		_ = w.Close()
		return core.NewTransportError(Name, "data", err)
	}
	if err := w.Close(); err != nil {
		return wrapSMTPError("data", err)
	}

	// The message is accepted at this point; servers that drop the
	// connection right after DATA make QUIT fail.
	_ = c.Quit()

	return nil
}

func (p *Provider) dial(ctx context.Context) (*smtp.Client, error) {
	dialer := &net.Dialer{Timeout: p.opts.Timeout}
	addr := p.Addr()

	var (
		conn net.Conn
		err  error
	)
	if p.opts.Encryption == EncryptionSSL {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: p.tlsConfig}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, err
	}

	var c *smtp.Client
	if p.opts.Encryption == EncryptionTLS {
		// CommandTimeout cannot be set before the handshake commands run.
		conn = &deadlineConn{Conn: conn, timeout: p.opts.Timeout}
		if c, err = smtp.NewClientStartTLS(conn, p.tlsConfig); err != nil {
			return nil, err
		}
	} else {
		c = smtp.NewClient(conn)
	}
	c.CommandTimeout = p.opts.Timeout
	c.SubmissionTimeout = p.opts.Timeout

	// STARTTLS resets the session, so EHLO is still pending here. Sending it
	// now completes the TLS handshake before dial returns.
	localName := p.opts.LocalDomain
	if localName == "" && p.opts.Encryption == EncryptionTLS {
		localName = "localhost"
	}
	if localName != "" {
		if err := c.Hello(localName); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	return c, nil
}

// deadlineConn caps every deadline set on the connection to timeout from now.
type deadlineConn struct {
	net.Conn
	timeout time.Duration
}

func (c *deadlineConn) SetDeadline(t time.Time) error {
	return c.Conn.SetDeadline(c.clamp(t))
}

func (c *deadlineConn) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(c.clamp(t))
}

func (c *deadlineConn) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(c.clamp(t))
}

func (c *deadlineConn) clamp(t time.Time) time.Time {
	if t.IsZero() || c.timeout <= 0 {
		return t
	}
	if limit := time.Now().Add(c.timeout); t.After(limit) {
		return limit
	}
	return t
}

// wrapSMTPError marks 4xx server replies as temporary.
func wrapSMTPError(op string, err error) error {
	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) && smtpErr.Code >= 400 && smtpErr.Code < 500 {
		return core.NewTemporaryTransportError(Name, op, err)
	}
	return core.NewTransportError(Name, op, err)
}
