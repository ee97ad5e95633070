package sendmail

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/lattiq/email/internal/core"
)

// Name is the driver name of this transport.
const Name = "sendmail"

// DefaultPath is the binary looked up in PATH when no path is configured.
const DefaultPath = "sendmail"

// DefaultArgs are passed before the envelope arguments when none are configured.
var DefaultArgs = []string{"-oi"}

// Options configures the local delivery transport.
type Options struct {
	// Path is the sendmail compatible binary.
	Path string

	// Args are extra arguments placed before "-f <from> -- <recipients>".
	Args []string
}

// ParseOptions reads sendmail options from driver settings. Unknown keys
// are ignored.
func ParseOptions(settings core.Settings) (Options, error) {
	opts := Options{
		Path: settings.String("path"),
		Args: settings.Strings("args"),
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if _, ok := settings["args"]; !ok {
		opts.Args = append([]string(nil), DefaultArgs...)
	}
	return opts, nil
}

// Provider hands messages to a local sendmail binary over stdin.
type Provider struct {
	path string
	args []string
}

// New resolves the configured binary. A binary that cannot be found is a
// dependency failure.
func New(opts Options) (*Provider, error) {
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	path, err := exec.LookPath(opts.Path)
	if err != nil {
		return nil, core.DependencyError(Name, err)
	}
	return &Provider{path: path, args: opts.Args}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return Name
}

// Path returns the resolved binary path.
func (p *Provider) Path() string {
	return p.path
}

// Send pipes the MIME encoded message to the binary. Recipients are passed
// explicitly so that Bcc addresses, which are not written to the headers,
// still receive the message.
func (p *Provider) Send(ctx context.Context, msg *core.Message) error {
	raw, err := msg.Bytes()
	if err != nil {
		return core.NewTransportError(Name, "compose", err)
	}

	from, rcpts := msg.Envelope()
	args := append([]string(nil), p.args...)
	if from != "" {
		args = append(args, "-f", from)
	}
	args = append(args, "--")
	args = append(args, rcpts...)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.path, args...)
	cmd.Stdin = bytes.NewReader(raw)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if out := strings.TrimSpace(stderr.String()); out != "" {
			err = fmt.Errorf("%w: %s", err, out)
		}
		return core.NewTransportError(Name, "send", err)
	}

	return nil
}
