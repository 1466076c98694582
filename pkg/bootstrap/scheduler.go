package bootstrap

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/events"
	"github.com/arthur-debert/genx/pkg/feature"
	"github.com/arthur-debert/genx/pkg/types"
)

// DefaultMaxConfigPasses bounds the configuration rewrite loop
const DefaultMaxConfigPasses = 32

// Scheduler drives the bootstrap of one container
type Scheduler struct {
	// Host is handed to every feature and owns the configuration
	Host types.Host

	// Features resolves configuration keys
	Features *feature.Registry

	Bus *events.Bus

	// AllowedFeatures restricts which keys are treated as features.
	// Nil allows every key.
	AllowedFeatures []string

	// MaxConfigPasses bounds the number of CONF groups run by the rewrite
	// loop. Zero means DefaultMaxConfigPasses.
	MaxConfigPasses int
}

func (s *Scheduler) logger() zerolog.Logger {
	return s.Host.Logger().With().Str("subsystem", "bootstrap").Logger()
}

func (s *Scheduler) allowed(name string) bool {
	if s.AllowedFeatures == nil {
		return true
	}
	for _, a := range s.AllowedFeatures {
		if a == name {
			return true
		}
	}
	return false
}

// Run executes the rewrite loop, then the four main stage groups in order
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.RewriteConfig(ctx); err != nil {
		return err
	}

	groups, err := s.Classify(s.Host.Config())
	if err != nil {
		return err
	}

	for _, g := range groups {
		if err := s.RunGroup(ctx, g); err != nil {
			return err
		}
	}
	return nil
}

// RewriteConfig runs CONF-stage features until a scan of the configuration
// finds none. Keys that resolve to no feature are left as application data;
// any other resolution failure aborts.
func (s *Scheduler) RewriteConfig(ctx context.Context) error {
	limit := s.MaxConfigPasses
	if limit <= 0 {
		limit = DefaultMaxConfigPasses
	}

	for pass := 0; ; pass++ {
		batch, err := s.scanConf(s.Host.Config())
		if err != nil {
			return err
		}
		if len(batch.Members) == 0 {
			logger := s.logger()
			logger.Debug().Int("passes", pass).Msg("Configuration settled")
			return nil
		}
		if pass >= limit {
			return errors.Newf(errors.ErrConfigLoop,
				"configuration did not settle after %d passes", limit).
				WithDetail("features", batch.Names())
		}

		if err := s.RunGroup(ctx, batch); err != nil {
			return err
		}
	}
}

// scanConf collects the CONF features of cfg and removes them from it
func (s *Scheduler) scanConf(cfg *types.Config) (Group, error) {
	batch := Group{Stage: types.StageConf}

	for _, name := range cfg.Keys() {
		if !s.allowed(name) {
			continue
		}

		f, err := s.Features.Resolve(name)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrFeatureNotFound) {
				continue
			}
			return Group{}, err
		}
		if f.Stage != types.StageConf {
			continue
		}

		options, _ := cfg.Get(name)
		cfg.Delete(name)
		batch.Members = append(batch.Members, Member{Name: name, Feature: f, Options: options})
	}

	return batch, nil
}

// Classify sorts the keys of cfg into the main stage groups. The result always
// holds one group per main stage, in execution order.
func (s *Scheduler) Classify(cfg *types.Config) ([]Group, error) {
	groups := make([]Group, len(types.MainStages))
	index := make(map[types.Stage]int, len(types.MainStages))
	for i, stage := range types.MainStages {
		groups[i] = Group{Stage: stage}
		index[stage] = i
	}

	for _, name := range cfg.Keys() {
		if !s.allowed(name) {
			continue
		}

		f, err := s.Features.Resolve(name)
		if err != nil {
			return nil, err
		}

		i, ok := index[f.Stage]
		if !ok {
			return nil, errors.Newf(errors.ErrUnknownStage,
				"invalid feature stage %q for feature %q", f.Stage, name).
				WithDetail("feature", name).
				WithDetail("stage", f.Stage.String())
		}

		options, _ := cfg.Get(name)
		groups[i].Members = append(groups[i].Members, Member{Name: name, Feature: f, Options: options})
	}

	return groups, nil
}

// DependsOn fails with DEPENDENCY unless every named feature is enabled on host.
// Features call it to assert that a dependency lives in an earlier stage.
func DependsOn(host types.Host, from string, names ...string) error {
	for _, name := range names {
		if !host.IsEnabled(name) {
			return errors.Newf(errors.ErrDependency,
				"%q feature requires %q feature to be enabled", from, name).
				WithDetail("feature", from).
				WithDetail("requires", name)
		}
	}
	return nil
}
