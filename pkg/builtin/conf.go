package builtin

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/genx/pkg/config"
	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/types"
)

// hostname and gitUserEmail are replaced in tests
var (
	hostname     = os.Hostname
	gitUserEmail = defaultGitUserEmail
)

func defaultGitUserEmail(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "git", "config", "--global", "user.email").Output()
	return string(out), err
}

// FeatureRegistry adds feature registry entries from configuration, e.g.
//
//	featureRegistry:
//	  mailer: acme/mail#smtp
//	  "*": [acme/features]
var FeatureRegistry = &types.Feature{
	Stage:       types.StageConf,
	Description: "Add feature registry entries and fallback roots",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		entries, err := asMap(name, options)
		if err != nil {
			return err
		}
		return host.AddFeatureRegistryEntries(entries)
	},
}

// ConfigByHostname reloads the configuration from <configName>.<hostname>.*
// in the config path. Options: fallbackName, the file suffix used when no
// host specific file exists.
var ConfigByHostname = &types.Feature{
	Stage:       types.StageConf,
	Description: "Reload configuration from a host specific file",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		opts, err := asMap(name, options)
		if err != nil {
			return err
		}

		logger := host.Logger()
		hostName, err := hostname()
		if err != nil {
			logger.Warn().Err(err).Msg("Unable to read hostname")
		}
		hostName = strings.TrimSpace(hostName)
		if hostName == "" {
			return invalidOptions(name, "unable to read hostname from environment")
		}

		if path, ok := findConfigFile(host, hostName); ok {
			return reloadFrom(ctx, host, path)
		}

		fallback, _ := opts["fallbackName"].(string)
		if fallback == "" {
			logger.Warn().Str("host", hostName).Str("configPath", host.ConfigPath()).
				Msg("Host specific config file not found and no fallback set, using defaults")
			return nil
		}

		path, ok := findConfigFile(host, fallback)
		if !ok {
			return errors.Newf(errors.ErrConfigLoad,
				"config file for host %q not found and fallback %q not found either", hostName, fallback).
				WithDetail("configPath", host.ConfigPath()).
				WithDetail("fallbackName", fallback)
		}
		return reloadFrom(ctx, host, path)
	},
}

// ConfigByGitUser reloads the configuration from <configName>.<user>.* where
// user is the local part of the global git user.email. Options: fallbackName,
// used when git has no user configured.
var ConfigByGitUser = &types.Feature{
	Stage:       types.StageConf,
	Description: "Reload configuration from a developer specific file",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		opts, err := asMap(name, options)
		if err != nil {
			return err
		}

		logger := host.Logger()
		email, err := gitUserEmail(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Unable to read git user.email")
		}
		email = strings.TrimSpace(email)
		if email == "" {
			fallback, _ := opts["fallbackName"].(string)
			if fallback == "" {
				logger.Warn().Msg("No git user.email and no fallback set, using defaults")
				return nil
			}
			email = fallback
		}

		devName, _, _ := strings.Cut(email, "@")
		path, ok := findConfigFile(host, devName)
		if !ok {
			logger.Warn().Str("developer", devName).Str("configPath", host.ConfigPath()).
				Msg("Developer specific config file does not exist, using defaults")
			return nil
		}
		return reloadFrom(ctx, host, path)
	},
}

// findConfigFile looks for <configName>.<suffix>.{yaml,yml,toml} in the config path
func findConfigFile(host types.Host, suffix string) (string, bool) {
	fs := fsOf(host)
	base := host.ConfigName() + "." + suffix
	for _, ext := range config.Extensions {
		path := filepath.Join(host.ConfigPath(), base+ext)
		if existsFile(fs, path) {
			return path, true
		}
	}
	return "", false
}

// reloadFrom makes path the host's config source and reloads
func reloadFrom(ctx context.Context, host types.Host, path string) error {
	host.SetConfigLoader(derivedLoader(host, path))
	return host.ReloadConfig(ctx)
}

// ConfigOverlay merges the top-level keys of a file over the active
// configuration. Options: a path, or {file: path}; relative to the config path.
var ConfigOverlay = &types.Feature{
	Stage:       types.StageConf,
	Description: "Merge a configuration file over the active configuration",
	Load: func(ctx context.Context, host types.Host, options any, name string) error {
		var file string
		switch v := options.(type) {
		case string:
			file = v
		case map[string]any:
			file, _ = v["file"].(string)
		}
		if file == "" {
			return invalidOptions(name, "a file is required")
		}

		loader := derivedLoader(host, file)
		loader.DisableEnv = true
		overlay, err := loader.Load(ctx, types.ConfigVars{
			AppName:     host.Name(),
			Env:         host.Env(),
			WorkingPath: host.WorkingPath(),
			ConfigPath:  host.ConfigPath(),
			ConfigName:  host.ConfigName(),
		})
		if err != nil {
			return err
		}

		merged := host.Config().Clone()
		for _, key := range overlay.Keys() {
			value, _ := overlay.Get(key)
			merged.Set(key, value)
		}
		host.ReplaceConfig(merged)
		return nil
	},
}
