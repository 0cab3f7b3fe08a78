package breedbase

import (
	"net/http"
	"time"

	"github.com/LavishGent/breedbase/internal/types"
)

type (
	// ClientOptions holds the collaborators applied by Option functions.
	ClientOptions = types.ClientOptions

	// Option configures a Client.
	Option func(*ClientOptions)
)

// WithLogger routes the client's logs to logger.
func WithLogger(logger Logger) Option {
	return func(o *ClientOptions) {
		o.Logger = logger
	}
}

// WithMetrics replaces the built-in tracker. Metrics() then reports an empty snapshot.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(o *ClientOptions) {
		o.Metrics = metrics
	}
}

// WithSerializer replaces the JSON serializer used for the cache record.
func WithSerializer(serializer Serializer) Option {
	return func(o *ClientOptions) {
		o.Serializer = serializer
	}
}

// WithBackend stores the catalog record in backend instead of the configured one.
// The client closes it on Close.
func WithBackend(backend Backend) Option {
	return func(o *ClientOptions) {
		o.Backend = backend
	}
}

// WithHTTPClient sends upstream requests through hc. The generative call uses
// hc's transport without its overall timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *ClientOptions) {
		o.HTTPClient = hc
	}
}

// WithClock replaces time.Now; tests use it to age the catalog record.
func WithClock(now func() time.Time) Option {
	return func(o *ClientOptions) {
		o.Clock = now
	}
}

// WithoutResilience disables the circuit breaker and bulkhead around durable backends.
func WithoutResilience() Option {
	return func(o *ClientOptions) {
		o.DisableResilience = true
	}
}
