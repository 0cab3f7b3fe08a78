package metrics

import (
	"log/slog"
	"strings"
	"time"

	"github.com/LavishGent/breedbase/internal/types"
)

// LoggingPublisher writes metrics to a slog logger. Individual events go out at
// debug level; snapshots and events at info.
type LoggingPublisher struct {
	logger   *slog.Logger
	baseTags []string
}

// NewLoggingPublisher creates a publisher that logs through logger with baseTags on every line.
func NewLoggingPublisher(logger *slog.Logger, baseTags ...string) *LoggingPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingPublisher{logger: logger.With("component", "metrics"), baseTags: baseTags}
}

func (p *LoggingPublisher) emit(kind, name string, tags []string, attrs ...any) {
	p.logger.Debug(kind, append([]any{"name", name, "tags", MergeTags(p.baseTags, tags)}, attrs...)...)
}

func (p *LoggingPublisher) Gauge(name string, value float64, tags ...string) {
	p.emit("gauge", name, tags, "value", value)
}

func (p *LoggingPublisher) Incr(name string, tags ...string) {
	p.emit("incr", name, tags)
}

func (p *LoggingPublisher) Count(name string, value int64, tags ...string) {
	p.emit("count", name, tags, "value", value)
}

func (p *LoggingPublisher) Histogram(name string, value float64, tags ...string) {
	p.emit("histogram", name, tags, "value", value)
}

func (p *LoggingPublisher) Timing(name string, duration time.Duration, tags ...string) {
	p.emit("timing", name, tags, "duration_ms", duration.Milliseconds())
}

func (p *LoggingPublisher) Event(title, text, alertType string, tags ...string) {
	p.logger.Info("event", "title", title, "text", text, "alert_type", alertType, "tags", MergeTags(p.baseTags, tags))
}

// PublishSnapshot logs every snapshot gauge as one info line, with dots in the
// gauge names replaced by underscores.
func (p *LoggingPublisher) PublishSnapshot(s *types.MetricsSnapshot) {
	gauges := SnapshotGauges(s)
	if gauges == nil {
		return
	}
	attrs := make([]any, 0, 2*len(gauges)+2)
	for _, g := range gauges {
		attrs = append(attrs, strings.ReplaceAll(g.Name, ".", "_"), g.Value)
	}
	attrs = append(attrs, "circuit_state", s.CircuitBreakerState)
	p.logger.Info("metrics_snapshot", attrs...)
}

// Close is a no-op.
func (p *LoggingPublisher) Close() error { return nil }

var _ types.Publisher = (*LoggingPublisher)(nil)
