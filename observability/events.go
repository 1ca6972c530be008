package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"poolbridge/core/events"
)

type eventMetrics struct {
	unbackedMints *prometheus.CounterVec
	backUnbacked  *prometheus.CounterVec
}

var (
	eventMetricsOnce sync.Once
	eventRegistry    *eventMetrics
)

// Events returns the metrics registry tracking structured bridge events.
func Events() *eventMetrics {
	eventMetricsOnce.Do(func() {
		eventRegistry = &eventMetrics{
			unbackedMints: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "poolbridge",
				Subsystem: "events",
				Name:      "unbacked_mints_total",
				Help:      "Count of unbacked mints segmented by asset.",
			}, []string{"asset"}),
			backUnbacked: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "poolbridge",
				Subsystem: "events",
				Name:      "back_unbacked_total",
				Help:      "Count of back-unbacked settlements segmented by asset.",
			}, []string{"asset"}),
		}
		prometheus.MustRegister(eventRegistry.unbackedMints)
		prometheus.MustRegister(eventRegistry.backUnbacked)
	})
	return eventRegistry
}

// RecordUnbackedMint increments the mint counter for the supplied asset.
func (m *eventMetrics) RecordUnbackedMint(asset string) {
	if m == nil {
		return
	}
	m.unbackedMints.WithLabelValues(normalize(asset)).Inc()
}

// RecordBackUnbacked increments the settlement counter for the supplied asset.
func (m *eventMetrics) RecordBackUnbacked(asset string) {
	if m == nil {
		return
	}
	m.backUnbacked.WithLabelValues(normalize(asset)).Inc()
}

func normalize(asset string) string {
	normalized := strings.TrimSpace(strings.ToUpper(asset))
	if normalized == "" {
		return "UNKNOWN"
	}
	return normalized
}

// Collector adapts the metrics registry to the events.Emitter interface so
// the engine's event stream doubles as a metrics feed. Events are forwarded
// to the wrapped emitter after counting.
type Collector struct {
	next events.Emitter
}

// NewCollector wraps the supplied emitter; nil falls back to a no-op sink.
func NewCollector(next events.Emitter) *Collector {
	if next == nil {
		next = events.NoopEmitter{}
	}
	return &Collector{next: next}
}

// Emit implements events.Emitter.
func (c *Collector) Emit(evt events.Event) {
	if c == nil {
		return
	}
	switch e := evt.(type) {
	case events.UnbackedMinted:
		Events().RecordUnbackedMint(e.Asset)
	case events.BackUnbacked:
		Events().RecordBackUnbacked(e.Asset)
	}
	c.next.Emit(evt)
}
