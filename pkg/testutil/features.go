package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/genx/pkg/feature"
	"github.com/arthur-debert/genx/pkg/types"
)

// TestModule is the module path NewCatalog registers test features under
const TestModule = "test/features"

// Func builds a feature from a load function
func Func(stage types.Stage, load types.LoadFunc) *types.Feature {
	return &types.Feature{Stage: stage, Load: load}
}

// Noop builds a feature that does nothing
func Noop(stage types.Stage) *types.Feature {
	return Func(stage, func(ctx context.Context, host types.Host, options any, name string) error {
		return nil
	})
}

// Sleep builds a feature that waits for d or until ctx is cancelled
func Sleep(stage types.Stage, d time.Duration) *types.Feature {
	return Func(stage, func(ctx context.Context, host types.Host, options any, name string) error {
		select {
		case <-time.After(d):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// Fail builds a feature whose load returns err
func Fail(stage types.Stage, err error) *types.Feature {
	return Func(stage, func(ctx context.Context, host types.Host, options any, name string) error {
		return err
	})
}

// Provide builds a feature registering its options as a service under the
// feature's configuration name
func Provide(stage types.Stage) *types.Feature {
	return Func(stage, func(ctx context.Context, host types.Host, options any, name string) error {
		return host.RegisterService(name, options, false)
	})
}

// ReplaceConfig builds a CONF feature that swaps the configuration for next
func ReplaceConfig(next func() *types.Config) *types.Feature {
	return Func(types.StageConf, func(ctx context.Context, host types.Host, options any, name string) error {
		host.ReplaceConfig(next())
		return nil
	})
}

// NewCatalog returns a fresh catalog with exports registered under TestModule
func NewCatalog(t *testing.T, exports map[string]*types.Feature) *feature.Catalog {
	t.Helper()

	c := feature.NewCatalog()
	require.NoError(t, c.RegisterModule(&feature.Module{Path: TestModule, Exports: exports}))
	return c
}

// Call is one recorded load
type Call struct {
	Name    string
	Options any
	Start   time.Time
	End     time.Time
}

// Recorder wraps features and records every load
type Recorder struct {
	mu    sync.Mutex
	calls []Call
}

// Wrap returns a copy of f whose loads are recorded
func (r *Recorder) Wrap(f *types.Feature) *types.Feature {
	wrapped := *f
	wrapped.Load = func(ctx context.Context, host types.Host, options any, name string) error {
		start := time.Now()
		err := f.Load(ctx, host, options, name)

		r.mu.Lock()
		r.calls = append(r.calls, Call{Name: name, Options: options, Start: start, End: time.Now()})
		r.mu.Unlock()
		return err
	}
	return &wrapped
}

// Calls returns the recorded loads in completion order
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Names returns the names of the recorded loads in completion order
func (r *Recorder) Names() []string {
	calls := r.Calls()
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
	}
	return names
}

// Call returns the recorded load for name
func (r *Recorder) Call(name string) (Call, bool) {
	for _, c := range r.Calls() {
		if c.Name == name {
			return c, true
		}
	}
	return Call{}, false
}
