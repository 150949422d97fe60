package reactive

import (
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultMaxFlushPasses bounds how many passes a single flush may take
	// before it gives up with a CyclicUpdateError.
	DefaultMaxFlushPasses = 100

	defaultTracerName = "github.com/delaneyj/signalgraph/reactive"
)

// OnErrorFunc receives errors that have no caller to return to, such as
// failures during an automatic flush.
type OnErrorFunc func(err error)

type config struct {
	name      string
	logger    *slog.Logger
	registry  prometheus.Registerer
	tracer    trace.Tracer
	maxPasses int
	autoFlush bool
	onError   OnErrorFunc
}

func defaultConfig() config {
	return config{
		name:      "default",
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxPasses: DefaultMaxFlushPasses,
	}
}

// Option configures a System.
type Option func(*config)

// WithName names the System in logs, spans and metric labels.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics registers scheduler metrics with the given registry.
func WithMetrics(registry prometheus.Registerer) Option {
	return func(c *config) {
		c.registry = registry
	}
}

// WithTracer sets the tracer used for flush spans.
// Default: the global OpenTelemetry tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) {
		c.tracer = tracer
	}
}

// WithMaxFlushPasses overrides DefaultMaxFlushPasses.
func WithMaxFlushPasses(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxPasses = n
		}
	}
}

// WithAutoFlush makes every write outside a batch flush immediately.
// Errors from those flushes go to the OnError handler.
func WithAutoFlush() Option {
	return func(c *config) {
		c.autoFlush = true
	}
}

// WithOnError sets the handler for errors that cannot be returned.
func WithOnError(fn OnErrorFunc) Option {
	return func(c *config) {
		c.onError = fn
	}
}

func (c *config) resolveTracer() trace.Tracer {
	if c.tracer != nil {
		return c.tracer
	}
	return otel.Tracer(defaultTracerName)
}

// NodeOption configures a single signal, derived computation or effect.
type NodeOption func(*nodeConfig)

type nodeConfig struct {
	label        string
	equals       any
	alwaysNotify bool
}

// WithLabel attaches a human readable label used in diagnostics.
func WithLabel(label string) NodeOption {
	return func(c *nodeConfig) {
		c.label = label
	}
}

// WithEquals sets the equality predicate deciding whether a write (or a
// recomputation) changed the value. T must match the node's value type.
func WithEquals[T any](fn func(a, b T) bool) NodeOption {
	return func(c *nodeConfig) {
		c.equals = fn
	}
}

// WithAlwaysNotify disables the equality check: every write notifies.
func WithAlwaysNotify() NodeOption {
	return func(c *nodeConfig) {
		c.alwaysNotify = true
	}
}

func buildNodeConfig(opts []NodeOption) nodeConfig {
	var c nodeConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func resolveEquals[T any](c nodeConfig) func(a, b T) bool {
	if c.alwaysNotify {
		return func(a, b T) bool { return false }
	}
	if c.equals == nil {
		return defaultEquals[T]
	}
	fn, ok := c.equals.(func(a, b T) bool)
	if !ok {
		panic("reactive: WithEquals predicate does not match the node value type")
	}
	return fn
}
