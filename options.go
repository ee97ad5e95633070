package email

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/lattiq/email/internal/providers"
)

// TransportFactory builds the transport for a configured driver.
type TransportFactory func(ctx context.Context, driver string, opts Options) (Transport, error)

// Option is a functional option for configuring a Registry.
type Option func(*settings)

type settings struct {
	group           string
	defaultInstance string
	logger          logrus.FieldLogger
	tracerProvider  trace.TracerProvider
	factory         TransportFactory
}

func defaultSettings() settings {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return settings{
		group:           DefaultGroup,
		defaultInstance: DefaultInstance,
		logger:          logger,
		tracerProvider:  otel.GetTracerProvider(),
		factory:         defaultFactory,
	}
}

func defaultFactory(ctx context.Context, driver string, opts Options) (Transport, error) {
	return providers.New(ctx, driver, opts)
}

// WithConfigGroup sets the configuration group instances are read from.
func WithConfigGroup(group string) Option {
	return func(s *settings) {
		if group != "" {
			s.group = group
		}
	}
}

// WithDefaultInstance sets the instance name used when Instance is called
// with an empty name.
func WithDefaultInstance(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.defaultInstance = name
		}
	}
}

// WithLogger sets the logger. By default log output is discarded.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *settings) {
		if tp != nil {
			s.tracerProvider = tp
		}
	}
}

// WithTransportFactory replaces the driver factory used to build the
// transport of new instances.
func WithTransportFactory(factory TransportFactory) Option {
	return func(s *settings) {
		if factory != nil {
			s.factory = factory
		}
	}
}
