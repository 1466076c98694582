// Package metrics records bootstrap timings as prometheus metrics by
// observing a container's event bus.
package metrics

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arthur-debert/genx/pkg/events"
)

// DefaultNamespace prefixes every metric name
const DefaultNamespace = "genx"

const loadPrefix = "load:"

// Observer turns before/after events into durations and counts
type Observer struct {
	reg *prometheus.Registry

	stageDuration   *prometheus.HistogramVec
	featureDuration *prometheus.HistogramVec
	featureLoads    *prometheus.CounterVec
	lifecycle       *prometheus.CounterVec

	mu     sync.Mutex
	starts map[string]time.Time
}

// NewObserver registers the bootstrap metrics in reg. A nil reg creates a
// private registry; an empty namespace means DefaultNamespace.
func NewObserver(reg *prometheus.Registry, namespace string) *Observer {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &Observer{
		reg: reg,
		stageDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Time taken to load a stage group, hooks included",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		featureDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "feature_load_duration_seconds",
				Help:      "Time taken to load a feature",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"feature"},
		),
		featureLoads: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feature_loads_total",
				Help:      "Total number of successful feature loads",
			},
			[]string{"feature"},
		),
		lifecycle: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lifecycle_events_total",
				Help:      "Total number of container lifecycle events by name",
			},
			[]string{"event"},
		),
		starts: make(map[string]time.Time),
	}
}

// Registry returns the registry the metrics live in
func (o *Observer) Registry() *prometheus.Registry {
	return o.reg
}

// Attach subscribes the observer to every event on bus
func (o *Observer) Attach(bus *events.Bus) (detach func()) {
	return bus.OnAny(o.Handle)
}

// Handle records one event
func (o *Observer) Handle(ctx context.Context, ev *events.Event) {
	now := time.Now()

	switch {
	case strings.HasPrefix(ev.Name, events.Before("")):
		o.mu.Lock()
		o.starts[strings.TrimPrefix(ev.Name, events.Before(""))] = now
		o.mu.Unlock()

	case strings.HasPrefix(ev.Name, events.After("")):
		what := strings.TrimPrefix(ev.Name, events.After(""))

		o.mu.Lock()
		start, ok := o.starts[what]
		delete(o.starts, what)
		o.mu.Unlock()

		if feature, isLoad := strings.CutPrefix(what, loadPrefix); isLoad {
			o.featureLoads.WithLabelValues(feature).Inc()
			if ok {
				o.featureDuration.WithLabelValues(feature).Observe(now.Sub(start).Seconds())
			}
			return
		}
		if ok {
			o.stageDuration.WithLabelValues(what).Observe(now.Sub(start).Seconds())
		}

	default:
		o.lifecycle.WithLabelValues(ev.Name).Inc()
	}
}
