package testutil

import (
	"context"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/genx/pkg/events"
	"github.com/arthur-debert/genx/pkg/feature"
	"github.com/arthur-debert/genx/pkg/logging"
	"github.com/arthur-debert/genx/pkg/services"
	"github.com/arthur-debert/genx/pkg/types"
)

// Host is an in-memory types.Host
type Host struct {
	Services *services.Registry
	Features *feature.Registry
	Bus      *events.Bus

	name        string
	env         string
	workingPath string

	mu     sync.RWMutex
	config *types.Config
	loader types.ConfigLoader
	logger zerolog.Logger
}

var _ types.Host = (*Host)(nil)

// NewHost creates a host around cfg whose features resolve against catalog
// with roots as fallback roots. The working path is a fresh temp dir.
func NewHost(t *testing.T, cfg *types.Config, catalog *feature.Catalog, roots ...string) *Host {
	t.Helper()

	if cfg == nil {
		cfg = types.NewConfig()
	}
	return &Host{
		Services:    services.New(),
		Features:    feature.NewRegistry(catalog, roots...),
		Bus:         events.NewBus(),
		name:        "test",
		env:         "test",
		workingPath: t.TempDir(),
		config:      cfg,
		logger:      logging.New(io.Discard, zerolog.Disabled),
	}
}

// WithEnv sets the environment name
func (h *Host) WithEnv(env string) *Host {
	h.env = env
	return h
}

// WithWorkingPath sets the working path
func (h *Host) WithWorkingPath(path string) *Host {
	h.workingPath = path
	return h
}

func (h *Host) Name() string        { return h.name }
func (h *Host) Env() string         { return h.env }
func (h *Host) WorkingPath() string { return h.workingPath }
func (h *Host) ConfigPath() string  { return h.ToAbsolutePath("conf") }
func (h *Host) ConfigName() string  { return "app" }

func (h *Host) ToAbsolutePath(parts ...string) string {
	if len(parts) == 0 {
		return h.workingPath
	}
	if filepath.IsAbs(parts[0]) {
		return filepath.Join(parts...)
	}
	return filepath.Join(append([]string{h.workingPath}, parts...)...)
}

func (h *Host) Logger() zerolog.Logger {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.logger
}

func (h *Host) SetLogger(logger zerolog.Logger) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger = logger
}

func (h *Host) Config() *types.Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

func (h *Host) ReplaceConfig(cfg *types.Config) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.config = cfg
}

func (h *Host) ConfigLoader() types.ConfigLoader {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.loader
}

func (h *Host) SetConfigLoader(loader types.ConfigLoader) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loader = loader
}

func (h *Host) ReloadConfig(ctx context.Context) error {
	loader := h.ConfigLoader()
	if loader == nil {
		return nil
	}
	cfg, err := loader.Load(ctx, types.ConfigVars{
		AppName:     h.name,
		Env:         h.env,
		WorkingPath: h.workingPath,
		ConfigPath:  h.ConfigPath(),
		ConfigName:  h.ConfigName(),
	})
	if err != nil {
		return err
	}
	h.ReplaceConfig(cfg)
	return nil
}

func (h *Host) RegisterService(name string, service any, override bool) error {
	return h.Services.Register(name, service, override)
}

func (h *Host) GetService(name string) any  { return h.Services.Get(name) }
func (h *Host) HasService(name string) bool { return h.Services.Has(name) }
func (h *Host) IsEnabled(name string) bool  { return h.Features.Enabled(name) }

func (h *Host) AddFeatureRegistryEntries(entries map[string]any) error {
	return h.Features.AddEntries(entries)
}

func (h *Host) ResolveFeature(name string) (*types.Feature, error) {
	return h.Features.Resolve(name)
}

func (h *Host) Events() *events.Bus { return h.Bus }
