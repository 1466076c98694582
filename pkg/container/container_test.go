package container

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/genx/pkg/bootstrap"
	"github.com/arthur-debert/genx/pkg/config"
	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/events"
	"github.com/arthur-debert/genx/pkg/feature"
	"github.com/arthur-debert/genx/pkg/logging"
	"github.com/arthur-debert/genx/pkg/testutil"
	"github.com/arthur-debert/genx/pkg/types"
)

const appRoot = "app/features"

// settingsFeature registers options["value"] as the "settings" service
var settingsFeature = testutil.Func(types.StageInit, func(ctx context.Context, host types.Host, options any, name string) error {
	opts, _ := options.(map[string]any)
	return host.RegisterService(name, opts["value"], false)
})

// cacheFeature requires the feature named by options["uses"]
var cacheFeature = testutil.Func(types.StageService, func(ctx context.Context, host types.Host, options any, name string) error {
	opts, _ := options.(map[string]any)
	uses, _ := opts["uses"].(string)
	if err := bootstrap.DependsOn(host, name, uses); err != nil {
		return err
	}
	return host.RegisterService(name, map[string]any{"backing": host.GetService(uses)}, false)
})

func appCatalog(t *testing.T, extra map[string]*types.Feature) *feature.Catalog {
	t.Helper()

	exports := map[string]*types.Feature{
		"settings": settingsFeature,
		"cache":    cacheFeature,
	}
	for k, v := range extra {
		exports[k] = v
	}

	c := feature.NewCatalog()
	require.NoError(t, c.RegisterModule(&feature.Module{Path: appRoot, Exports: exports}))
	return c
}

func quietLogger() *zerolog.Logger {
	l := logging.New(io.Discard, zerolog.Disabled)
	return &l
}

func newContainer(t *testing.T, cfg *types.Config, extra map[string]*types.Feature) *Container {
	t.Helper()

	c, err := New("test", Options{
		WorkingPath:           t.TempDir(),
		Config:                cfg,
		LoadConfigFromOptions: true,
		Catalog:               appCatalog(t, extra),
		FeatureRoots:          []string{appRoot},
		Logger:                quietLogger(),
	})
	require.NoError(t, err)
	return c
}

func scenarioConfig() *types.Config {
	cfg := types.NewConfig()
	cfg.Set("settings", map[string]any{"type": "INIT", "value": map[string]any{"k": 1}})
	cfg.Set("cache", map[string]any{"type": "SERVICE", "uses": "settings"})
	return cfg
}

func TestStartEndToEnd(t *testing.T) {
	c := newContainer(t, scenarioConfig(), nil)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Started())
	assert.True(t, c.IsEnabled("settings"))
	assert.True(t, c.IsEnabled("cache"))
	assert.NotNil(t, c.GetService("cache"))
	assert.Equal(t, map[string]any{"k": 1}, c.GetService("settings"))
	assert.Equal(t, []string{"cache", "settings"}, c.ServiceNames())

	for _, rec := range c.Features() {
		assert.True(t, rec.Loaded, rec.Name)
	}

	require.NoError(t, c.Stop(context.Background()))
	assert.Equal(t, StateStopped, c.State())
}

func TestLifecycleLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(zerolog.SyncWriter(&buf), zerolog.DebugLevel).
		With().Str("component", "container").Logger()

	c, err := New("test", Options{
		WorkingPath: t.TempDir(),
		Loader: types.ConfigLoaderFunc(func(ctx context.Context, vars types.ConfigVars) (*types.Config, error) {
			return scenarioConfig(), nil
		}),
		Catalog:      appCatalog(t, nil),
		FeatureRoots: []string{appRoot},
		Logger:       &logger,
	})
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Stop(context.Background()))

	out := buf.String()
	for _, msg := range []string{"Starting app", "Config loaded", "Service registered", "Configuration settled", "App started", "Stopping app"} {
		assert.Contains(t, out, msg)
	}
	assert.Contains(t, out, `"subsystem":"bootstrap"`)

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		assert.LessOrEqual(t, strings.Count(line, `"component"`), 1, line)
	}
}

func TestLifecycleEventsInOrder(t *testing.T) {
	c := newContainer(t, scenarioConfig(), nil)

	var mu sync.Mutex
	var seen []string
	c.OnAny(func(ctx context.Context, ev *events.Event) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, ev.Name)
	})

	require.NoError(t, c.Start(context.Background()))

	assert.Equal(t, events.ConfigLoaded, seen[0])
	assert.Equal(t, events.Ready, seen[len(seen)-1])
	assert.Contains(t, seen, "before:load:cache")
	assert.Less(t, indexOf(seen, "after:Initial"), indexOf(seen, "before:Services"))
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}

func TestStopAwaitsEveryCleanup(t *testing.T) {
	var flushed atomic.Bool
	cleanup := testutil.Func(types.StageService, func(ctx context.Context, host types.Host, options any, name string) error {
		host.Events().On(events.Stopping, func(ctx context.Context, ev *events.Event) {
			ev.Go(func(ctx context.Context) error {
				return stderrors.New("connection already closed")
			})
			ev.Go(func(ctx context.Context) error {
				time.Sleep(30 * time.Millisecond)
				flushed.Store(true)
				return nil
			})
		})
		return nil
	})

	cfg := scenarioConfig()
	cfg.Set("cleanup", nil)
	c := newContainer(t, cfg, map[string]*types.Feature{"cleanup": cleanup})
	require.NoError(t, c.Start(context.Background()))

	var stopped atomic.Bool
	c.On(events.Stopped, func(ctx context.Context, ev *events.Event) { stopped.Store(true) })

	err := c.Stop(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrCleanup))
	assert.Contains(t, err.Error(), "connection already closed")

	assert.True(t, flushed.Load(), "the sibling cleanup still ran")
	assert.True(t, stopped.Load(), "teardown completed")
	assert.Equal(t, StateStopped, c.State())
	assert.Nil(t, c.Config())
	assert.Nil(t, c.GetService("cache"))
	assert.False(t, c.IsEnabled("cache"))
	assert.Zero(t, c.Events().ListenerCount(events.Stopped))
}

func TestLifecycleMisuse(t *testing.T) {
	ctx := context.Background()
	c := newContainer(t, scenarioConfig(), nil)

	err := c.Stop(ctx)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLifecycle), "stop before start")

	require.NoError(t, c.Start(ctx))
	err = c.Start(ctx)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLifecycle), "double start")

	require.NoError(t, c.Stop(ctx))
	assert.NoError(t, c.Stop(ctx), "stop is idempotent")

	err = c.Start(ctx)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLifecycle), "restart in place")

	err = c.RegisterService("late", 1, false)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLifecycle))
}

func TestConcurrentStartIsRejected(t *testing.T) {
	c := newContainer(t, scenarioConfig(), map[string]*types.Feature{
		"slow": testutil.Sleep(types.StageInit, 30*time.Millisecond),
	})
	c.opts.Config.Set("slow", nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Start(context.Background())
		}(i)
	}
	wg.Wait()

	lifecycle := 0
	for _, err := range errs {
		if errors.IsErrorCode(err, errors.ErrLifecycle) {
			lifecycle++
		} else {
			assert.NoError(t, err)
		}
	}
	assert.Equal(t, 1, lifecycle)
}

func TestEmptyConfigFails(t *testing.T) {
	c := newContainer(t, types.NewConfig(), nil)

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigEmpty))
	assert.Equal(t, StateFailed, c.State())
}

func TestConfigLoadedHandlerMayReplaceConfig(t *testing.T) {
	c := newContainer(t, types.NewConfig(), nil)
	c.On(events.ConfigLoaded, func(ctx context.Context, ev *events.Event) {
		ev.Payload.(types.Host).ReplaceConfig(scenarioConfig())
	})

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.HasService("cache"))
}

func TestAllowedFeatures(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Set("unrelated", map[string]any{"not": "a feature"})

	c, err := New("test", Options{
		WorkingPath:           t.TempDir(),
		Config:                cfg,
		LoadConfigFromOptions: true,
		Catalog:               appCatalog(t, nil),
		FeatureRoots:          []string{appRoot},
		AllowedFeatures:       []string{"settings"},
		Logger:                quietLogger(),
	})
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.IsEnabled("settings"))
	assert.False(t, c.IsEnabled("cache"))
	assert.False(t, c.HasService("cache"))
}

func TestDuplicateServiceFailsStart(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Set("shadow", nil)

	c := newContainer(t, cfg, map[string]*types.Feature{
		"shadow": testutil.Func(types.StagePlugin, func(ctx context.Context, host types.Host, options any, name string) error {
			return host.RegisterService("cache", "shadowed", false)
		}),
	})

	err := c.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicateService))
	assert.True(t, errors.IsErrorCode(err, errors.ErrFeatureLoad))

	// Earlier stages stay registered until the caller stops the container
	assert.Equal(t, StateFailed, c.State())
	assert.True(t, c.HasService("cache"))
	assert.NoError(t, c.Stop(context.Background()))
}

func TestUnknownFeatureFailsStart(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Set("mailer", map[string]any{})
	c := newContainer(t, cfg, nil)

	err := c.Start(context.Background())
	assert.True(t, errors.IsErrorCode(err, errors.ErrFeatureNotFound))
}

func TestFeatureEntriesOption(t *testing.T) {
	cfg := types.NewConfig()
	cfg.Set("store", map[string]any{"value": "x"})

	c, err := New("test", Options{
		WorkingPath:           t.TempDir(),
		Config:                cfg,
		LoadConfigFromOptions: true,
		Catalog:               appCatalog(t, nil),
		FeatureEntries:        map[string]any{"store": appRoot + "#settings"},
		Logger:                quietLogger(),
	})
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, "x", c.GetService("store"))
}

func TestStartWithFileLoader(t *testing.T) {
	fs := testutil.MemFS(t, map[string]string{
		"/srv/app/conf/app.default.yaml": `
settings:
  value: {k: 1}
cache:
  uses: settings
`,
		"/srv/app/conf/app.staging.yaml": `
settings:
  value: {k: 2}
`,
	})

	c, err := New("test", Options{
		Env:          "staging",
		WorkingPath:  "/srv/app",
		Loader:       &config.FileLoader{Fs: fs, DisableEnv: true},
		Catalog:      appCatalog(t, nil),
		FeatureRoots: []string{appRoot},
		Logger:       quietLogger(),
	})
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, map[string]any{"k": 2}, c.GetService("settings"))
	assert.Equal(t, []string{"settings", "cache"}, c.Config().Keys())
}

func TestReloadConfigWithoutLoader(t *testing.T) {
	c := newContainer(t, scenarioConfig(), nil)
	err := c.ReloadConfig(context.Background())
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestReloadConfigUsesCurrentLoader(t *testing.T) {
	c := newContainer(t, scenarioConfig(), nil)

	var got types.ConfigVars
	c.SetConfigLoader(types.ConfigLoaderFunc(func(ctx context.Context, vars types.ConfigVars) (*types.Config, error) {
		got = vars
		return types.ConfigFromMap(map[string]any{"reloaded": true}), nil
	}))

	require.NoError(t, c.ReloadConfig(context.Background()))
	assert.Equal(t, []string{"reloaded"}, c.Config().Keys())
	assert.Equal(t, "test", got.AppName)
	assert.Equal(t, filepath.Join(c.WorkingPath(), "conf"), got.ConfigPath)
	assert.Equal(t, "app", got.ConfigName)
}

func TestDefaults(t *testing.T) {
	t.Setenv(EnvVar, "production")

	dir := t.TempDir()
	c, err := New("demo", Options{WorkingPath: dir, Logger: quietLogger()})
	require.NoError(t, err)

	assert.Equal(t, "production", c.Env())
	assert.Equal(t, filepath.Join(dir, "conf"), c.ConfigPath())
	assert.Equal(t, "app", c.ConfigName())
	assert.NotEmpty(t, c.ID())
	assert.Equal(t, StateCreated, c.State())

	t.Setenv(EnvVar, "")
	c, err = New("demo", Options{WorkingPath: dir, Logger: quietLogger()})
	require.NoError(t, err)
	assert.Equal(t, DefaultEnv, c.Env())

	_, err = New("", Options{})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestToAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	c, err := New("demo", Options{WorkingPath: dir, Logger: quietLogger()})
	require.NoError(t, err)

	assert.Equal(t, dir, c.ToAbsolutePath())
	assert.Equal(t, filepath.Join(dir, "a", "b"), c.ToAbsolutePath("a", "b"))
	assert.Equal(t, "/etc/genx", c.ToAbsolutePath("a", "/etc", "genx"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "started", StateStarted.String())
	assert.Equal(t, "unknown", State(42).String())
}
