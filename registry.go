package email

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/lattiq/email"

// Registry creates and caches named Mailer instances.
// All methods are safe for concurrent use.
type Registry struct {
	source    ConfigSource
	settings  settings
	tracer    trace.Tracer
	mu        sync.Mutex
	instances map[string]*Mailer
}

// NewRegistry returns a registry reading instance configuration from source.
func NewRegistry(source ConfigSource, opts ...Option) *Registry {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	return &Registry{
		source:    source,
		settings:  s,
		tracer:    s.tracerProvider.Tracer(instrumentationName, trace.WithInstrumentationVersion(Version)),
		instances: make(map[string]*Mailer),
	}
}

// Instance returns the mailer registered under name, creating it from the
// registry's configuration source on first use. An empty name selects the
// default instance.
func (r *Registry) Instance(name string) (*Mailer, error) {
	return r.instance(name, nil)
}

// InstanceWithConfig behaves like Instance but builds a missing instance
// from cfg instead of the configuration source. cfg is ignored when the
// instance already exists.
func (r *Registry) InstanceWithConfig(name string, cfg Config) (*Mailer, error) {
	return r.instance(name, func(string) (Config, error) { return cfg, nil })
}

// Names returns the sorted names of the instances created so far.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.instances))
	for name := range r.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) instance(name string, load func(group string) (Config, error)) (*Mailer, error) {
	if name == "" {
		name = r.settings.defaultInstance
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.instances[name]; ok {
		return m, nil
	}

	if load == nil {
		if r.source == nil {
			return nil, missingConfig(name, r.settings.group)
		}
		load = r.source.Load
	}
	cfg, err := load(r.settings.group)
	if err != nil {
		return nil, &ConfigError{Instance: name, Err: err}
	}

	group, ok := cfg[name]
	if !ok {
		return nil, missingConfig(name, r.settings.group)
	}

	transport, err := r.settings.factory(context.Background(), group.Driver, group.Options)
	if err != nil {
		return nil, &ConfigError{Instance: name, Err: err}
	}

	m := newMailer(name, group.Driver, transport, r.tracer, r.settings.logger)
	r.instances[name] = m

	r.settings.logger.WithFields(logrus.Fields{
		"instance":  name,
		"driver":    group.Driver,
		"transport": transport.Name(),
	}).Debug("email instance created")

	return m, nil
}
