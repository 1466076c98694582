package container

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/genx/pkg/feature"
	"github.com/arthur-debert/genx/pkg/types"
)

const (
	// EnvVar names the variable holding the default environment
	EnvVar = "GENX_ENV"

	DefaultEnv        = "development"
	DefaultConfigPath = "conf"
	DefaultConfigName = "app"
)

// Options configure a container
type Options struct {
	// Env selects environment specific configuration layers.
	// Defaults to $GENX_ENV, then "development".
	Env string

	// WorkingPath anchors relative paths. Defaults to the process working directory.
	WorkingPath string

	// ConfigPath is the configuration directory, relative to WorkingPath
	ConfigPath string

	// ConfigName is the base name of configuration files
	ConfigName string

	// AllowedFeatures restricts which configuration keys load as features.
	// Nil allows all.
	AllowedFeatures []string

	// Config is used as is, bypassing the loader, when LoadConfigFromOptions is set
	Config                *types.Config
	LoadConfigFromOptions bool

	// FeatureRoots are searched after the built-in module, newest last
	FeatureRoots []string

	// FeatureEntries are explicit registry entries applied before bootstrap
	FeatureEntries map[string]any

	// Catalog defaults to feature.DefaultCatalog()
	Catalog *feature.Catalog

	// Loader defaults to a config.FileLoader on the OS file system
	Loader types.ConfigLoader

	// MaxConfigPasses bounds the configuration rewrite loop
	MaxConfigPasses int

	Logger *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Env == "" {
		o.Env = os.Getenv(EnvVar)
	}
	if o.Env == "" {
		o.Env = DefaultEnv
	}
	if o.ConfigPath == "" {
		o.ConfigPath = DefaultConfigPath
	}
	if o.ConfigName == "" {
		o.ConfigName = DefaultConfigName
	}
	if o.Catalog == nil {
		o.Catalog = feature.DefaultCatalog()
	}
	return o
}
