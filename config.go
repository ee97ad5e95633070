package email

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"

	"github.com/lattiq/email/internal/providers"
)

// Configuration defaults.
const (
	// DefaultGroup is the configuration group mailer instances are read from.
	DefaultGroup = "email"

	// DefaultInstance is the instance name used when none is given.
	DefaultInstance = "default"
)

// Driver names understood by the registry. Any other value selects the
// native transport.
const (
	DriverSMTP     = "smtp"
	DriverNative   = "native"
	DriverSES      = "ses"
	DriverSendGrid = "sendgrid"
	DriverMailgun  = "mailgun"
	DriverPostmark = "postmark"
)

// Group is the configuration of a single mailer instance.
type Group struct {
	// Driver selects the transport.
	Driver string `yaml:"driver"`

	// Options holds driver specific settings.
	Options Options `yaml:"options"`
}

// Config maps instance names to their configuration.
type Config map[string]Group

// Validate parses the options of every group and reports all failures.
func (c Config) Validate() error {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)

	var result *multierror.Error
	for _, name := range names {
		g := c[name]
		if err := providers.Validate(g.Driver, g.Options); err != nil {
			result = multierror.Append(result, &ConfigError{Instance: name, Err: err})
		}
	}
	return result.ErrorOrNil()
}

// ConfigSource supplies configuration groups to a Registry.
type ConfigSource interface {
	// Load returns the configuration stored under group.
	Load(group string) (Config, error)
}

type staticSource struct {
	cfg Config
}

// StaticConfig returns a source serving cfg for every group.
func StaticConfig(cfg Config) ConfigSource {
	return staticSource{cfg: cfg}
}

func (s staticSource) Load(string) (Config, error) {
	return s.cfg, nil
}

// FileSource reads configuration groups from a YAML document whose top
// level keys are group names. References of the form ${VAR} in string
// values are replaced with the environment variable; any other "$" is
// kept as written.
//
//	email:
//	  default:
//	    driver: smtp
//	    options:
//	      hostname: smtp.example.com
//	      port: 587
//	      encryption: tls
//	      password: ${SMTP_PASSWORD}
type FileSource struct {
	Path string
}

// Load reads the file and returns the named group. A missing group yields
// an empty Config.
func (f FileSource) Load(group string) (Config, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read email config: %w", err)
	}

	var doc map[string]Config
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse email config %s: %w", f.Path, err)
	}

	cfg := doc[group]
	for name, g := range cfg {
		g.Driver = expandEnv(g.Driver)
		for key, value := range g.Options {
			g.Options[key] = expandValue(value)
		}
		cfg[name] = g
	}
	return cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

func expandEnv(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

func expandValue(v any) any {
	switch v := v.(type) {
	case string:
		return expandEnv(v)
	case []any:
		for i := range v {
			v[i] = expandValue(v[i])
		}
		return v
	case map[string]any:
		for k := range v {
			v[k] = expandValue(v[k])
		}
		return v
	default:
		return v
	}
}
