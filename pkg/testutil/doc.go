// Package testutil provides helpers for testing genx components.
//
// Key components:
//   - Host: an in-memory types.Host for exercising features and the scheduler
//     without a full container
//   - Recorder: feature fakes that record load order, timing and options
//   - MemFS: afero in-memory file systems seeded from a map
//
// Usage guidelines:
//   - Build catalogs per test with NewCatalog; never register test modules
//     into the default catalog
//   - All test data should be defined inline, not in external files
package testutil
