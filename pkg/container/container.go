package container

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/genx/pkg/bootstrap"
	"github.com/arthur-debert/genx/pkg/config"
	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/events"
	"github.com/arthur-debert/genx/pkg/feature"
	"github.com/arthur-debert/genx/pkg/logging"
	"github.com/arthur-debert/genx/pkg/services"
	"github.com/arthur-debert/genx/pkg/types"
)

// Container is an application container
type Container struct {
	id          string
	name        string
	env         string
	workingPath string
	configPath  string
	configName  string
	opts        Options
	bus         *events.Bus

	mu       sync.RWMutex
	state    State
	config   *types.Config
	loader   types.ConfigLoader
	services *services.Registry
	features *feature.Registry
	logger   zerolog.Logger
}

var _ types.Host = (*Container)(nil)

// New creates a container named name
func New(name string, opts Options) (*Container, error) {
	if name == "" {
		return nil, errors.New(errors.ErrInvalidInput, "container name cannot be empty")
	}
	opts = opts.withDefaults()

	workingPath := opts.WorkingPath
	if workingPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to get working directory")
		}
		workingPath = wd
	}
	workingPath, err := filepath.Abs(workingPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid working path %q", opts.WorkingPath)
	}

	c := &Container{
		id:          uuid.NewString(),
		name:        name,
		env:         opts.Env,
		workingPath: workingPath,
		configName:  opts.ConfigName,
		opts:        opts,
		bus:         events.NewBus(),
		state:       StateCreated,
	}
	c.configPath = c.ToAbsolutePath(opts.ConfigPath)

	if opts.Logger != nil {
		c.logger = *opts.Logger
	} else {
		c.logger = logging.GetLogger("container")
	}
	c.logger = c.logger.With().Str("app", name).Logger()

	return c, nil
}

// Start bootstraps the container. A failed start leaves the container in
// StateFailed with whatever services were registered before the failure;
// call Stop to tear it down.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateCreated {
		state := c.state
		c.mu.Unlock()
		return errors.Newf(errors.ErrLifecycle, "cannot start a %s container", state).
			WithDetail("state", state.String())
	}
	c.state = StateStarting
	c.services = services.New()
	c.features = feature.NewRegistry(c.opts.Catalog, append([]string{feature.BuiltinModule}, c.opts.FeatureRoots...)...)
	c.loader = c.opts.Loader
	c.mu.Unlock()

	logger := c.Logger()
	logger.Info().Str("env", c.env).Str("id", c.id).Msg("Starting app")
	done := logging.LogOperationStart(logger, "start")

	if err := c.start(ctx); err != nil {
		c.setState(StateFailed)
		logger.Error().Err(err).Msg("App failed to start")
		return err
	}

	c.setState(StateStarted)
	done()
	logger.Info().Msg("App started")
	return nil
}

func (c *Container) start(ctx context.Context) error {
	if len(c.opts.FeatureEntries) > 0 {
		if err := c.features.AddEntries(c.opts.FeatureEntries); err != nil {
			return err
		}
	}

	if c.opts.LoadConfigFromOptions {
		c.ReplaceConfig(c.opts.Config.Clone())
	} else {
		if c.ConfigLoader() == nil {
			c.SetConfigLoader(config.NewFileLoader(nil))
		}
		if err := c.ReloadConfig(ctx); err != nil {
			return err
		}
	}

	if err := c.bus.Emit(ctx, events.ConfigLoaded, c); err != nil {
		return errors.Wrap(err, errors.ErrConfigLoad, "configLoaded hook failed")
	}

	if c.Config().IsEmpty() {
		return errors.Newf(errors.ErrConfigEmpty, "empty configuration, nothing to do; config path: %s", c.configPath).
			WithDetail("configPath", c.configPath)
	}

	s := &bootstrap.Scheduler{
		Host:            c,
		Features:        c.features,
		Bus:             c.bus,
		AllowedFeatures: c.opts.AllowedFeatures,
		MaxConfigPasses: c.opts.MaxConfigPasses,
	}
	if err := s.Run(ctx); err != nil {
		return err
	}

	if err := c.bus.Emit(ctx, events.Ready, c); err != nil {
		return errors.Wrap(err, errors.ErrFeatureLoad, "ready hook failed")
	}
	return nil
}

// Stop tears the container down. Every cleanup task registered on the
// stopping event runs to completion; their failures are returned as one
// CLEANUP error after teardown has finished. Stopping a stopped container is
// a no-op.
func (c *Container) Stop(ctx context.Context) error {
	c.mu.Lock()
	switch c.state {
	case StateStopped:
		c.mu.Unlock()
		return nil
	case StateStarted, StateFailed:
	default:
		state := c.state
		c.mu.Unlock()
		return errors.Newf(errors.ErrLifecycle, "cannot stop a %s container", state).
			WithDetail("state", state.String())
	}
	c.state = StateStopping
	c.mu.Unlock()

	var errs []error
	if err := c.bus.Emit(ctx, events.Stopping, c); err != nil {
		errs = append(errs, err)
	}

	logger := c.Logger()
	logger.Info().Msg("Stopping app")

	c.mu.Lock()
	c.config = nil
	c.loader = nil
	c.services.Clear()
	c.features.Reset()
	c.services = nil
	c.features = nil
	c.mu.Unlock()

	if err := c.bus.Emit(ctx, events.Stopped, c); err != nil {
		errs = append(errs, err)
	}
	c.bus.RemoveAll()
	c.setState(StateStopped)

	if len(errs) > 0 {
		return errors.Wrap(stderrors.Join(errs...), errors.ErrCleanup, "cleanup failed while stopping")
	}
	return nil
}

func (c *Container) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// State returns the lifecycle state
func (c *Container) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Started reports whether Start completed successfully and Stop has not begun
func (c *Container) Started() bool {
	return c.State() == StateStarted
}

// ID is unique per container instance
func (c *Container) ID() string          { return c.id }
func (c *Container) Name() string        { return c.name }
func (c *Container) Env() string         { return c.env }
func (c *Container) WorkingPath() string { return c.workingPath }
func (c *Container) ConfigPath() string  { return c.configPath }
func (c *Container) ConfigName() string  { return c.configName }

// ToAbsolutePath resolves parts against the working path. An absolute part
// restarts resolution from itself.
func (c *Container) ToAbsolutePath(parts ...string) string {
	p := c.workingPath
	for _, part := range parts {
		if filepath.IsAbs(part) {
			p = part
			continue
		}
		p = filepath.Join(p, part)
	}
	return filepath.Clean(p)
}

func (c *Container) Logger() zerolog.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

func (c *Container) SetLogger(logger zerolog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

// Config returns the active configuration; nil once stopped
func (c *Container) Config() *types.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *Container) ReplaceConfig(cfg *types.Config) {
	if cfg == nil {
		cfg = types.NewConfig()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config = cfg
}

func (c *Container) ConfigLoader() types.ConfigLoader {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loader
}

func (c *Container) SetConfigLoader(loader types.ConfigLoader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loader = loader
}

// ReloadConfig replaces the active configuration with a fresh one from the
// current loader
func (c *Container) ReloadConfig(ctx context.Context) error {
	loader := c.ConfigLoader()
	if loader == nil {
		return errors.New(errors.ErrConfigLoad, "no config loader set")
	}

	cfg, err := loader.Load(ctx, c.ConfigVars())
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", c.configPath).
			WithDetail("configPath", c.configPath)
	}
	c.ReplaceConfig(cfg)
	logger := c.Logger()
	logger.Debug().Strs("keys", cfg.Keys()).Msg("Config loaded")
	return nil
}

// ConfigVars describes the container to config loaders
func (c *Container) ConfigVars() types.ConfigVars {
	return types.ConfigVars{
		AppName:     c.name,
		Env:         c.env,
		WorkingPath: c.workingPath,
		ConfigPath:  c.configPath,
		ConfigName:  c.configName,
	}
}

func (c *Container) registries() (*services.Registry, *feature.Registry) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.services, c.features
}

// RegisterService registers a service; see services.Registry.Register
func (c *Container) RegisterService(name string, service any, override bool) error {
	svcs, _ := c.registries()
	if svcs == nil {
		return errors.Newf(errors.ErrLifecycle, "cannot register service %q on a %s container", name, c.State())
	}
	if err := svcs.Register(name, service, override); err != nil {
		return err
	}
	logger := c.Logger()
	logger.Debug().Str("service", name).Msg("Service registered")
	return nil
}

func (c *Container) GetService(name string) any {
	svcs, _ := c.registries()
	if svcs == nil {
		return nil
	}
	return svcs.Get(name)
}

func (c *Container) HasService(name string) bool {
	svcs, _ := c.registries()
	return svcs != nil && svcs.Has(name)
}

// ServiceNames lists registered services in sorted order
func (c *Container) ServiceNames() []string {
	svcs, _ := c.registries()
	if svcs == nil {
		return nil
	}
	return svcs.Names()
}

// IsEnabled reports whether feature has been resolved by this container
func (c *Container) IsEnabled(feature string) bool {
	_, features := c.registries()
	return features != nil && features.Enabled(feature)
}

// Features returns the resolution records of this container sorted by name
func (c *Container) Features() []feature.Record {
	_, features := c.registries()
	if features == nil {
		return nil
	}
	return features.Records()
}

func (c *Container) AddFeatureRegistryEntries(entries map[string]any) error {
	_, features := c.registries()
	if features == nil {
		return errors.New(errors.ErrLifecycle, "feature registry is only available while starting")
	}
	return features.AddEntries(entries)
}

func (c *Container) ResolveFeature(name string) (*types.Feature, error) {
	_, features := c.registries()
	if features == nil {
		return nil, errors.New(errors.ErrLifecycle, "feature registry is only available while starting")
	}
	return features.Resolve(name)
}

func (c *Container) Events() *events.Bus { return c.bus }

// On subscribes to a container event
func (c *Container) On(name string, h events.Handler) func() { return c.bus.On(name, h) }

// Once subscribes to the next emission of a container event
func (c *Container) Once(name string, h events.Handler) func() { return c.bus.Once(name, h) }

// OnAny subscribes to every container event
func (c *Container) OnAny(h events.Handler) func() { return c.bus.OnAny(h) }
