// Package builtin provides the features shipped with genx. Importing the
// package registers them in the default catalog under feature.BuiltinModule.
package builtin

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/arthur-debert/genx/pkg/config"
	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/feature"
	"github.com/arthur-debert/genx/pkg/types"
)

func init() {
	feature.Register(Module())
}

// Module returns a fresh module holding every built-in feature
func Module() *feature.Module {
	return &feature.Module{
		Path: feature.BuiltinModule,
		Exports: map[string]*types.Feature{
			"featureRegistry":  FeatureRegistry,
			"configByHostname": ConfigByHostname,
			"configByGitUser":  ConfigByGitUser,
			"configOverlay":    ConfigOverlay,
			"env":              Env,
			"runtimeEnv":       RuntimeEnv,
			"settings":         Settings,
			"version":          Version,
			"timezone":         Timezone,
			"metrics":          Metrics,
			"loggers":          Loggers,
			"lruCache":         LRUCache,
			"serviceGroup":     ServiceGroup,
			"appLogger":        AppLogger,
		},
	}
}

// invalidOptions reports options a feature cannot use
func invalidOptions(name string, format string, args ...any) error {
	return errors.Newf(errors.ErrConfigInvalid, "%s: %s", name, fmt.Sprintf(format, args...)).
		WithDetail("feature", name)
}

// asMap accepts mapping options; nil yields an empty map
func asMap(name string, options any) (map[string]any, error) {
	switch v := options.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return nil, invalidOptions(name, "expected a mapping, got %T", options)
	}
}

// fsOf returns the file system behind the host's config loader
func fsOf(host types.Host) afero.Fs {
	if l, ok := host.ConfigLoader().(*config.FileLoader); ok && l.Fs != nil {
		return l.Fs
	}
	return afero.NewOsFs()
}

// derivedLoader returns a file loader for files that inherits the env
// layer settings of the host's current loader
func derivedLoader(host types.Host, files ...string) *config.FileLoader {
	next := &config.FileLoader{Fs: fsOf(host)}
	if l, ok := host.ConfigLoader().(*config.FileLoader); ok {
		next.EnvPrefix = l.EnvPrefix
		next.DisableEnv = l.DisableEnv
		next.Environ = l.Environ
	}
	next.Files = files
	return next
}

func existsFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && !info.IsDir()
}
