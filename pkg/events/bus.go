package events

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// Handler receives an emitted event. It may register asynchronous work with ev.Go.
type Handler func(ctx context.Context, ev *Event)

// Task is a unit of asynchronous work contributed by a subscriber
type Task func(ctx context.Context) error

// Event is a single emission. It is only valid until Emit returns.
type Event struct {
	Name    string
	Payload any

	ctx   context.Context
	mu    sync.Mutex
	tasks *pool.ContextPool
}

// Go registers a task the emitter must await before Emit returns.
// Tasks start immediately and run concurrently with each other.
func (e *Event) Go(task Task) {
	e.mu.Lock()
	if e.tasks == nil {
		e.tasks = pool.New().WithErrors().WithContext(e.ctx)
	}
	p := e.tasks
	e.mu.Unlock()

	p.Go(func(ctx context.Context) error {
		return task(ctx)
	})
}

// wait blocks until every registered task has finished and joins their errors
func (e *Event) wait() error {
	e.mu.Lock()
	p := e.tasks
	e.mu.Unlock()

	if p == nil {
		return nil
	}
	return p.Wait()
}

type subscription struct {
	id      uint64
	handler Handler
	once    bool
}

// Bus is an in-process publish/subscribe hub
type Bus struct {
	mu     sync.Mutex
	nextID uint64
	named  map[string][]subscription
	any    []subscription
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{named: make(map[string][]subscription)}
}

// On subscribes h to the named event and returns a function that unsubscribes it
func (b *Bus) On(name string, h Handler) func() {
	return b.add(name, h, false)
}

// Once subscribes h for the next emission of the named event only
func (b *Bus) Once(name string, h Handler) func() {
	return b.add(name, h, true)
}

// OnAny subscribes h to every event emitted on the bus
func (b *Bus) OnAny(h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.any = append(b.any, subscription{id: id, handler: h})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.any = without(b.any, id)
	}
}

func (b *Bus) add(name string, h Handler, once bool) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.named[name] = append(b.named[name], subscription{id: id, handler: h, once: once})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.removeNamed(name, id)
	}
}

func (b *Bus) removeNamed(name string, id uint64) {
	subs := without(b.named[name], id)
	if len(subs) == 0 {
		delete(b.named, name)
		return
	}
	b.named[name] = subs
}

func without(subs []subscription, id uint64) []subscription {
	out := subs[:0:0]
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

// Emit delivers an event to its subscribers, then waits for all tasks they
// registered. The returned error joins every task failure.
func (b *Bus) Emit(ctx context.Context, name string, payload any) error {
	b.mu.Lock()
	named := append([]subscription(nil), b.named[name]...)
	catchAll := append([]subscription(nil), b.any...)
	for _, s := range named {
		if s.once {
			b.removeNamed(name, s.id)
		}
	}
	b.mu.Unlock()

	ev := &Event{Name: name, Payload: payload, ctx: ctx}
	for _, s := range named {
		s.handler(ctx, ev)
	}
	for _, s := range catchAll {
		s.handler(ctx, ev)
	}

	return ev.wait()
}

// ListenerCount returns the number of subscribers for the named event,
// not counting catch-all subscribers
func (b *Bus) ListenerCount(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.named[name])
}

// RemoveAll drops every subscription, leaving the bus inert
func (b *Bus) RemoveAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.named = make(map[string][]subscription)
	b.any = nil
}
