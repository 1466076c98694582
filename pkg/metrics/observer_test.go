package metrics

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/genx/pkg/events"
)

func emitAll(t *testing.T, bus *events.Bus, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, bus.Emit(context.Background(), name, nil))
	}
}

func TestObserverRecordsLoadsAndStages(t *testing.T) {
	bus := events.NewBus()
	o := NewObserver(nil, "")
	detach := o.Attach(bus)

	emitAll(t, bus,
		events.Before("Services"),
		events.BeforeLoad("cache"),
		events.AfterLoad("cache"),
		events.After("Services"),
		events.Ready,
	)

	assert.Equal(t, float64(1), testutil.ToFloat64(o.featureLoads.WithLabelValues("cache")))
	assert.Equal(t, float64(1), testutil.ToFloat64(o.lifecycle.WithLabelValues(events.Ready)))
	assert.Equal(t, 1, testutil.CollectAndCount(o.stageDuration, "genx_stage_duration_seconds"))
	assert.Equal(t, 1, testutil.CollectAndCount(o.featureDuration, "genx_feature_load_duration_seconds"))

	detach()
	emitAll(t, bus, events.Ready)
	assert.Equal(t, float64(1), testutil.ToFloat64(o.lifecycle.WithLabelValues(events.Ready)))
}

func TestObserverIgnoresUnmatchedAfter(t *testing.T) {
	bus := events.NewBus()
	o := NewObserver(nil, "")
	o.Attach(bus)

	emitAll(t, bus, events.After("Initial"))
	assert.Equal(t, 0, testutil.CollectAndCount(o.stageDuration))
}

func TestObserverNamespaceAndRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	o := NewObserver(reg, "myapp")
	assert.Same(t, reg, o.Registry())

	bus := events.NewBus()
	o.Attach(bus)
	emitAll(t, bus, events.Stopping)

	expected := `
# HELP myapp_lifecycle_events_total Total number of container lifecycle events by name
# TYPE myapp_lifecycle_events_total counter
myapp_lifecycle_events_total{event="stopping"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "myapp_lifecycle_events_total"))
}
