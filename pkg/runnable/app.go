// Package runnable decorates a container with what a process needs to run
// it: logger injection, signal handling and a start, work, stop runner.
package runnable

import (
	"context"
	stderrors "errors"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/genx/pkg/container"
	"github.com/arthur-debert/genx/pkg/logging"
)

// Work is the body of a run; it should return when ctx is done
type Work func(ctx context.Context, app *App) error

// App is a runnable container
type App struct {
	*container.Container

	signals SignalSource
	logger  *zerolog.Logger

	mu          sync.Mutex
	loggerStack []zerolog.Logger
	sigCh       <-chan os.Signal
	unsubscribe func()
}

// Option configures an App
type Option func(*App)

// WithLogger injects logger into the container when it starts
func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) { a.logger = &logger }
}

// WithSignalSource replaces the OS signal source
func WithSignalSource(s SignalSource) Option {
	return func(a *App) { a.signals = s }
}

// Wrap decorates c
func Wrap(c *container.Container, opts ...Option) *App {
	a := &App{Container: c, signals: OSSignals{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// New creates a container and wraps it
func New(name string, options container.Options, opts ...Option) (*App, error) {
	c, err := container.New(name, options)
	if err != nil {
		return nil, err
	}
	return Wrap(c, opts...), nil
}

// Start injects the logger, subscribes to signals and starts the container
func (a *App) Start(ctx context.Context) error {
	if a.State() != container.StateCreated {
		return a.Container.Start(ctx)
	}

	if a.logger != nil {
		a.ReplaceLogger(a.logger)
	}

	a.mu.Lock()
	a.sigCh, a.unsubscribe = a.signals.Subscribe()
	a.mu.Unlock()

	return a.Container.Start(ctx)
}

// Stop stops the container, then unsubscribes from signals and restores the
// logger that was active before Start
func (a *App) Stop(ctx context.Context) error {
	err := a.Container.Stop(ctx)

	a.mu.Lock()
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
		a.sigCh = nil
	}
	a.mu.Unlock()

	if a.logger != nil {
		a.ReplaceLogger(nil)
	}
	return err
}

// ReplaceLogger attaches logger to the container, remembering the current
// one. A nil logger detaches the last attached logger and restores the
// previous one.
func (a *App) ReplaceLogger(logger *zerolog.Logger) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if logger != nil {
		a.loggerStack = append(a.loggerStack, a.Container.Logger())
		a.Container.SetLogger(*logger)
		logger.Debug().Msg("A new app logger attached")
		return
	}

	if len(a.loggerStack) == 0 {
		return
	}
	prev := a.loggerStack[len(a.loggerStack)-1]
	a.loggerStack = a.loggerStack[:len(a.loggerStack)-1]
	a.Container.SetLogger(prev)
	prev.Debug().Msg("The current app logger is detached")
}

// Signals returns the channel signals arrive on while the app is started
func (a *App) Signals() <-chan os.Signal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sigCh
}

// Run starts the app, runs work and stops the app. A signal or the
// cancellation of ctx cancels the context given to work. With nil work, Run
// waits for a signal or for ctx to be done.
func (a *App) Run(ctx context.Context, work Work) error {
	if err := a.Start(ctx); err != nil {
		return stderrors.Join(err, a.stopAfterFailure())
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case sig, ok := <-a.Signals():
			if ok {
				logger := a.Logger()
				logger.Info().Str("signal", sig.String()).Msg("Signal received, stopping")
			}
			cancel()
		case <-runCtx.Done():
		}
	}()

	var workErr error
	if work != nil {
		workErr = work(runCtx, a)
	} else {
		<-runCtx.Done()
	}
	cancel()

	// Stop must not be cut short by the cancellation that ended the run
	stopErr := a.Stop(context.WithoutCancel(ctx))
	return stderrors.Join(workErr, stopErr)
}

func (a *App) stopAfterFailure() error {
	if a.State() != container.StateFailed {
		return nil
	}
	return a.Stop(context.Background())
}

// StartWorker creates an app, runs worker on it and stops it
func StartWorker(ctx context.Context, name string, options container.Options, worker Work, opts ...Option) error {
	app, err := New(name, options, opts...)
	if err != nil {
		return err
	}
	logger := logging.WithFields(map[string]interface{}{"component": "runnable", "app": name})
	logger.Debug().Msg("Starting worker")
	return app.Run(ctx, worker)
}
