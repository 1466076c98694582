package builtin

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/events"
	"github.com/arthur-debert/genx/pkg/metrics"
	"github.com/arthur-debert/genx/pkg/types"
)

const (
	// StageEnvVar selects the stage:<name> overlay of the settings feature
	StageEnvVar = "STAGE_ENV"

	// ManifestFile is read by the version feature for ManifestVersion
	ManifestFile = "genx.toml"

	// ManifestVersion asks the version feature to read the manifest
	ManifestVersion = "@manifest.version"

	DefaultTimezone = "UTC"

	settingsEnvPrefix   = "env:"
	settingsStagePrefix = "stage:"
)

// Env exports its options as process environment variables
var Env = &types.Feature{
	Stage:       types.StageInit,
	Description: "Set process environment variables",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		vars, err := asMap(name, options)
		if err != nil {
			return err
		}

		keys := make([]string, 0, len(vars))
		for k := range vars {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			if err := os.Setenv(k, fmt.Sprint(vars[k])); err != nil {
				return errors.Wrapf(err, errors.ErrInternal, "failed to set %s", k)
			}
		}
		logger := host.Logger()
		logger.Debug().Strs("vars", keys).Msg("Environment variables set")
		return nil
	},
}

// RuntimeEnv registers the runtime environment flag as service "runtimeEnv"
var RuntimeEnv = &types.Feature{
	Stage:       types.StageInit,
	Description: "Register the runtime environment flag",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		flag, ok := options.(string)
		if !ok {
			return invalidOptions(name, "expected a string, got %T", options)
		}
		return host.RegisterService("runtimeEnv", flag, false)
	},
}

// Settings registers the application settings as service "settings". Keys
// "env:<env>" and "stage:<stage>" hold overlays applied when the container
// env, or $STAGE_ENV, matches; the stage overlay wins.
var Settings = &types.Feature{
	Stage:       types.StageInit,
	Description: "Register application settings with env and stage overlays",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		settings, err := asMap(name, options)
		if err != nil {
			return err
		}

		merged, err := mergeSettings(name, settings, host.Env(), os.Getenv(StageEnvVar))
		if err != nil {
			return err
		}
		return host.RegisterService("settings", merged, false)
	},
}

func mergeSettings(name string, settings map[string]any, env, stage string) (map[string]any, error) {
	result := make(map[string]any)
	var envOverlay, stageOverlay map[string]any

	for key, value := range settings {
		switch {
		case strings.HasPrefix(key, settingsEnvPrefix):
			if strings.TrimPrefix(key, settingsEnvPrefix) != env {
				continue
			}
			overlay, ok := value.(map[string]any)
			if !ok {
				return nil, invalidOptions(name, "invalid env settings %q", key)
			}
			envOverlay = overlay
		case strings.HasPrefix(key, settingsStagePrefix):
			if stage == "" || strings.TrimPrefix(key, settingsStagePrefix) != stage {
				continue
			}
			overlay, ok := value.(map[string]any)
			if !ok {
				return nil, invalidOptions(name, "invalid stage settings %q", key)
			}
			stageOverlay = overlay
		default:
			result[key] = value
		}
	}

	for k, v := range envOverlay {
		result[k] = v
	}
	for k, v := range stageOverlay {
		result[k] = v
	}
	return result, nil
}

// Version registers the application version as service "version"
var Version = &types.Feature{
	Stage:       types.StageInit,
	Description: "Register the application version",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		version, ok := options.(string)
		if !ok {
			return invalidOptions(name, "expected a string, got %T", options)
		}

		if version == ManifestVersion {
			v, err := manifestVersion(fsOf(host), host.ToAbsolutePath(ManifestFile))
			if err != nil {
				return err
			}
			version = v
		}
		return host.RegisterService("version", version, false)
	},
}

func manifestVersion(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrConfigLoad, "%q not found in working directory", ManifestFile).
			WithDetail("path", path)
	}

	var manifest struct {
		Version string `toml:"version"`
	}
	if err := toml.Unmarshal(data, &manifest); err != nil {
		return "", errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path)
	}
	if manifest.Version == "" {
		return "", errors.Newf(errors.ErrConfigInvalid, "%s has no version", path)
	}
	return manifest.Version, nil
}

// Clock reports time in the configured location
type Clock struct {
	Location *time.Location
}

// Now returns the current time in the clock's location
func (c *Clock) Now() time.Time {
	return time.Now().In(c.Location)
}

// Timezone registers a *Clock as service "timezone"
var Timezone = &types.Feature{
	Stage:       types.StageInit,
	Description: "Register a clock for the application timezone",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		zone, ok := options.(string)
		if !ok && options != nil {
			return invalidOptions(name, "timezone value should be a string")
		}
		if zone == "" {
			zone = DefaultTimezone
		}

		loc, err := time.LoadLocation(zone)
		if err != nil {
			return errors.Wrapf(err, errors.ErrConfigInvalid, "unknown timezone %q", zone)
		}
		return host.RegisterService("timezone", &Clock{Location: loc}, false)
	},
}

// Metrics attaches a prometheus bootstrap observer to the container events
// and registers it as service "metrics". Options: {namespace}.
var Metrics = &types.Feature{
	Stage:       types.StageInit,
	Description: "Record bootstrap metrics with prometheus",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		opts, err := asMap(name, options)
		if err != nil {
			return err
		}
		namespace, _ := opts["namespace"].(string)

		observer := metrics.NewObserver(nil, namespace)
		detach := observer.Attach(host.Events())
		host.Events().On(events.Stopped, func(ctx context.Context, ev *events.Event) {
			detach()
		})
		return host.RegisterService("metrics", observer, false)
	},
}
