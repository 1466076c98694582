package types

import (
	"context"

	"github.com/arthur-debert/genx/pkg/errors"
)

// LoadFunc initialises a feature inside a container. The name is the
// configuration key the feature was enabled under, which differs from the
// feature's own name when it is instantiated through a service group.
type LoadFunc func(ctx context.Context, host Host, options any, name string) error

// Feature describes a pluggable unit of bootstrap logic
type Feature struct {
	// Stage decides which stage group the feature joins
	Stage Stage

	// Load runs the feature
	Load LoadFunc

	// Groupable allows the feature to be instantiated several times under
	// different names by the serviceGroup feature
	Groupable bool

	// Description is a one-line summary shown by the CLI
	Description string
}

// Validate checks that the descriptor exposes a stage and a load function.
// An unrecognised stage is not a shape error; the scheduler rejects it when classifying.
func (f *Feature) Validate() error {
	if f == nil {
		return errors.New(errors.ErrFeatureInvalid, "feature descriptor is nil")
	}
	if f.Stage == "" {
		return errors.New(errors.ErrFeatureInvalid, "feature descriptor has no stage")
	}
	if f.Load == nil {
		return errors.New(errors.ErrFeatureInvalid, "feature descriptor has no load function")
	}
	return nil
}
