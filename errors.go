package email

import (
	"errors"
	"fmt"

	"github.com/lattiq/email/internal/core"
)

// Predefined sentinel errors for common cases.
var (
	// ErrConfigurationMissing indicates no configuration entry exists for
	// the requested instance name.
	ErrConfigurationMissing = errors.New("email configuration missing")

	// ErrInvalidConfiguration indicates a configuration entry whose driver
	// options could not be parsed.
	ErrInvalidConfiguration = errors.New("invalid email configuration")

	// ErrDependency indicates the driver's underlying library or binary
	// could not be loaded.
	ErrDependency = core.ErrDependency
)

// ConfigError reports a failure to construct the named mailer instance.
type ConfigError struct {
	// Instance is the name of the mailer instance.
	Instance string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("email instance %q: %v", e.Instance, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is matches ErrInvalidConfiguration when the cause is an option
// validation failure.
func (e *ConfigError) Is(target error) bool {
	if target != ErrInvalidConfiguration {
		return false
	}
	var verr *core.ValidationError
	return errors.As(e.Err, &verr)
}

func missingConfig(name, group string) error {
	return &ConfigError{
		Instance: name,
		Err:      fmt.Errorf("%w: no %q entry in group %q", ErrConfigurationMissing, name, group),
	}
}
