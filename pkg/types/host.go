package types

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/genx/pkg/events"
)

// ConfigVars describes the container to a configuration loader
type ConfigVars struct {
	AppName     string
	Env         string
	WorkingPath string
	ConfigPath  string
	ConfigName  string
}

// ConfigLoader produces the container configuration
type ConfigLoader interface {
	Load(ctx context.Context, vars ConfigVars) (*Config, error)
}

// ConfigLoaderFunc adapts a function to ConfigLoader
type ConfigLoaderFunc func(ctx context.Context, vars ConfigVars) (*Config, error)

// Load implements ConfigLoader
func (f ConfigLoaderFunc) Load(ctx context.Context, vars ConfigVars) (*Config, error) {
	return f(ctx, vars)
}

// Host is the container surface available to features while they load
type Host interface {
	// Name is the container (application) name
	Name() string
	Env() string
	WorkingPath() string
	ConfigPath() string
	ConfigName() string

	// ToAbsolutePath resolves parts relative to the working path
	ToAbsolutePath(parts ...string) string

	Logger() zerolog.Logger
	SetLogger(logger zerolog.Logger)

	// Config returns the active configuration
	Config() *Config

	// ReplaceConfig swaps the whole active configuration.
	// Only CONF-stage features should call it.
	ReplaceConfig(cfg *Config)

	ConfigLoader() ConfigLoader
	SetConfigLoader(loader ConfigLoader)

	// ReloadConfig asks the current loader for a fresh configuration and makes it active
	ReloadConfig(ctx context.Context) error

	RegisterService(name string, service any, override bool) error

	// GetService returns nil when no service is registered under name
	GetService(name string) any
	HasService(name string) bool

	// IsEnabled reports whether a feature has been resolved for this container
	IsEnabled(feature string) bool

	AddFeatureRegistryEntries(entries map[string]any) error
	ResolveFeature(name string) (*Feature, error)

	Events() *events.Bus
}
