// Package datadog publishes breedbase metrics to a DataDog agent over DogStatsD.
package datadog

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/metrics"
	"github.com/LavishGent/breedbase/internal/types"
)

// statsdClient is the part of statsd.ClientInterface the publisher calls.
type statsdClient interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Incr(name string, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	Timing(name string, value time.Duration, tags []string, rate float64) error
	Event(e *statsd.Event) error
	Close() error
}

// Publisher sends every metric at sample rate 1. Send errors are logged at
// debug level and otherwise dropped; metrics never fail a request.
type Publisher struct {
	client   statsdClient
	baseTags []string
	logger   *slog.Logger
}

// NewPublisher dials the agent described by cfg. A disabled config yields a
// no-op publisher.
func NewPublisher(cfg *config.DataDogConfig, logger *slog.Logger) (types.Publisher, error) {
	if !cfg.Enabled {
		return metrics.NewNoOpPublisher(), nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	addr := net.JoinHostPort(cfg.AgentHost, strconv.Itoa(cfg.Port))
	client, err := statsd.New(addr,
		statsd.WithNamespace(cfg.Prefix+"."),
		statsd.WithTags(cfg.Tags),
	)
	if err != nil {
		return nil, fmt.Errorf("datadog: statsd client for %s: %w", addr, err)
	}

	logger.Info("DataDog publisher initialized", "address", addr, "prefix", cfg.Prefix, "tags", cfg.Tags)
	return newPublisher(client, cfg.Tags, logger), nil
}

func newPublisher(client statsdClient, baseTags []string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{client: client, baseTags: baseTags, logger: logger.With("component", "datadog")}
}

func (p *Publisher) check(kind, name string, err error) {
	if err != nil {
		p.logger.Debug("Failed to send metric", "kind", kind, "name", name, "error", err)
	}
}

func (p *Publisher) tags(extra []string) []string {
	return metrics.MergeTags(p.baseTags, extra)
}

// Gauge records a point-in-time value.
func (p *Publisher) Gauge(name string, value float64, tags ...string) {
	p.check("gauge", name, p.client.Gauge(name, value, p.tags(tags), 1))
}

// Incr increments a counter by one.
func (p *Publisher) Incr(name string, tags ...string) {
	p.check("incr", name, p.client.Incr(name, p.tags(tags), 1))
}

// Count increments a counter by value.
func (p *Publisher) Count(name string, value int64, tags ...string) {
	p.check("count", name, p.client.Count(name, value, p.tags(tags), 1))
}

// Histogram records a value into a distribution.
func (p *Publisher) Histogram(name string, value float64, tags ...string) {
	p.check("histogram", name, p.client.Histogram(name, value, p.tags(tags), 1))
}

// Timing records a duration.
func (p *Publisher) Timing(name string, duration time.Duration, tags ...string) {
	p.check("timing", name, p.client.Timing(name, duration, p.tags(tags), 1))
}

// Event posts a DataDog event; alertType is one of info, warning, error or success.
func (p *Publisher) Event(title, text, alertType string, tags ...string) {
	p.check("event", title, p.client.Event(&statsd.Event{
		Title:     title,
		Text:      text,
		AlertType: statsd.EventAlertType(alertType),
		Tags:      p.tags(tags),
	}))
}

// PublishSnapshot sends the snapshot gauges.
func (p *Publisher) PublishSnapshot(s *types.MetricsSnapshot) {
	for _, g := range metrics.SnapshotGauges(s) {
		p.Gauge(g.Name, g.Value)
	}
}

// Close flushes and closes the statsd client.
func (p *Publisher) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

var _ types.Publisher = (*Publisher)(nil)
