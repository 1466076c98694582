package events

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmitCallsHandlersInOrder(t *testing.T) {
	bus := NewBus()
	var order []string

	bus.On("ready", func(ctx context.Context, ev *Event) { order = append(order, "first") })
	bus.On("ready", func(ctx context.Context, ev *Event) { order = append(order, "second") })
	bus.OnAny(func(ctx context.Context, ev *Event) { order = append(order, "any:"+ev.Name) })

	require.NoError(t, bus.Emit(context.Background(), "ready", nil))
	assert.Equal(t, []string{"first", "second", "any:ready"}, order)
}

func TestEmitPassesPayload(t *testing.T) {
	bus := NewBus()
	var got any
	bus.On(ConfigLoaded, func(ctx context.Context, ev *Event) { got = ev.Payload })

	require.NoError(t, bus.Emit(context.Background(), ConfigLoaded, "container"))
	assert.Equal(t, "container", got)
}

func TestOnceFiresOnce(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.Once("configLoaded", func(ctx context.Context, ev *Event) { calls++ })

	_ = bus.Emit(context.Background(), "configLoaded", nil)
	_ = bus.Emit(context.Background(), "configLoaded", nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, bus.ListenerCount("configLoaded"))
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	off := bus.On("ready", func(ctx context.Context, ev *Event) { calls++ })
	offAny := bus.OnAny(func(ctx context.Context, ev *Event) { calls++ })

	off()
	offAny()
	_ = bus.Emit(context.Background(), "ready", nil)

	assert.Equal(t, 0, calls)
}

func TestEmitAwaitsCollectedTasks(t *testing.T) {
	bus := NewBus()
	var closed atomic.Int32

	for i := 0; i < 3; i++ {
		bus.On(Stopping, func(ctx context.Context, ev *Event) {
			ev.Go(func(ctx context.Context) error {
				time.Sleep(20 * time.Millisecond)
				closed.Add(1)
				return nil
			})
		})
	}

	require.NoError(t, bus.Emit(context.Background(), Stopping, nil))
	assert.Equal(t, int32(3), closed.Load(), "all cleanups must finish before Emit returns")
}

func TestEmitRunsEveryTaskAndJoinsErrors(t *testing.T) {
	bus := NewBus()
	errFlush := stderrors.New("flush failed")
	errClose := stderrors.New("close failed")
	var completed atomic.Bool

	bus.On(Stopping, func(ctx context.Context, ev *Event) {
		ev.Go(func(ctx context.Context) error { return errFlush })
		ev.Go(func(ctx context.Context) error { return errClose })
		ev.Go(func(ctx context.Context) error {
			time.Sleep(30 * time.Millisecond)
			completed.Store(true)
			return nil
		})
	})

	err := bus.Emit(context.Background(), Stopping, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errFlush)
	assert.ErrorIs(t, err, errClose)
	assert.True(t, completed.Load(), "the healthy cleanup still ran to completion")
}

func TestTasksRunConcurrently(t *testing.T) {
	bus := NewBus()
	bus.On(Stopping, func(ctx context.Context, ev *Event) {
		for i := 0; i < 4; i++ {
			ev.Go(func(ctx context.Context) error {
				time.Sleep(50 * time.Millisecond)
				return nil
			})
		}
	})

	start := time.Now()
	require.NoError(t, bus.Emit(context.Background(), Stopping, nil))
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestRemoveAll(t *testing.T) {
	bus := NewBus()
	calls := 0
	bus.On("ready", func(ctx context.Context, ev *Event) { calls++ })
	bus.OnAny(func(ctx context.Context, ev *Event) { calls++ })

	bus.RemoveAll()
	_ = bus.Emit(context.Background(), "ready", nil)

	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, bus.ListenerCount("ready"))
}

func TestEventNames(t *testing.T) {
	assert.Equal(t, "before:Initial", Before("Initial"))
	assert.Equal(t, "after:Ready", After("Ready"))
	assert.Equal(t, "before:load:settings", BeforeLoad("settings"))
	assert.Equal(t, "after:load:settings", AfterLoad("settings"))
}
