package bootstrap

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/events"
	"github.com/arthur-debert/genx/pkg/types"
)

// Member is one feature to load inside a stage group
type Member struct {
	Name    string
	Feature *types.Feature
	Options any
}

// Group is the set of members sharing a stage, in configuration order
type Group struct {
	Stage   types.Stage
	Members []Member
}

// Names returns the member names in order
func (g Group) Names() []string {
	names := make([]string, len(g.Members))
	for i, m := range g.Members {
		names[i] = m.Name
	}
	return names
}

// RunGroup loads every member of g concurrently between the stage's before
// and after events. The first failing member cancels the context seen by its
// siblings; RunGroup returns once all of them have returned.
//
// A failure therefore does not end the stage immediately: a sibling that
// ignores ctx delays the returned error until it finishes. No member of the
// stage outlives RunGroup, so the next stage never overlaps with it.
func (s *Scheduler) RunGroup(ctx context.Context, g Group) error {
	logger := s.logger().With().Str("stage", g.Stage.String()).Logger()
	start := time.Now()

	if err := s.Bus.Emit(ctx, events.Before(g.Stage.String()), g); err != nil {
		return hookError(err, events.Before(g.Stage.String()))
	}
	logger.Debug().Int("features", len(g.Members)).Msg("Loading feature group")

	eg, gctx := errgroup.WithContext(ctx)
	for _, m := range g.Members {
		eg.Go(func() error {
			return s.loadMember(gctx, g.Stage, m)
		})
	}
	if err := eg.Wait(); err != nil {
		logger.Debug().Err(err).Msg("Feature group failed")
		return err
	}

	logger.Debug().Dur("duration", time.Since(start)).Msg("Finished loading feature group")

	if err := s.Bus.Emit(ctx, events.After(g.Stage.String()), g); err != nil {
		return hookError(err, events.After(g.Stage.String()))
	}
	return nil
}

func (s *Scheduler) loadMember(ctx context.Context, stage types.Stage, m Member) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf(errors.ErrFeatureLoad, "feature %q panicked: %v", m.Name, r).
				WithDetail("feature", m.Name).
				WithDetail("stage", stage.String())
		}
	}()

	if err := s.Bus.Emit(ctx, events.BeforeLoad(m.Name), m); err != nil {
		return hookError(err, events.BeforeLoad(m.Name))
	}

	logger := s.logger()
	logger.Debug().Str("feature", m.Name).Msg("Loading feature")

	if err := m.Feature.Load(ctx, s.Host, m.Options, m.Name); err != nil {
		return errors.Wrapf(err, errors.ErrFeatureLoad, "feature %q failed to load", m.Name).
			WithDetail("feature", m.Name).
			WithDetail("stage", stage.String())
	}

	// Members assembled by hand, not through Classify, have no record
	_ = s.Features.MarkLoaded(m.Name)
	logger.Debug().Str("feature", m.Name).Msg("Feature loaded")

	if err := s.Bus.Emit(ctx, events.AfterLoad(m.Name), m); err != nil {
		return hookError(err, events.AfterLoad(m.Name))
	}
	return nil
}

func hookError(err error, event string) error {
	return errors.Wrap(err, errors.ErrFeatureLoad, fmt.Sprintf("%s hook failed", event)).
		WithDetail("event", event)
}
