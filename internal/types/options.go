package types

import (
	"net/http"
	"time"
)

// ClientOptions holds the injectable collaborators of a breedbase client.
type ClientOptions struct {
	// Logger is the structured logger to use.
	Logger Logger

	// Metrics is the metrics recorder.
	Metrics MetricsRecorder

	// Serializer encodes the catalog record for the cache backend.
	Serializer Serializer

	// Backend replaces the backend selected by config.
	Backend Backend

	// HTTPClient is shared by all upstream clients.
	HTTPClient *http.Client

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time

	// DisableResilience skips the circuit breaker and bulkhead around durable backends.
	DisableResilience bool
}
