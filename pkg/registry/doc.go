// Package registry provides a generic, type-safe registry keyed by name.
// It backs the service registry and the feature module catalog, and
// supports both strict registration and explicit replacement.
package registry
