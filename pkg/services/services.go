// Package services holds the named service instances registered by features
// while a container bootstraps.
package services

import (
	"github.com/arthur-debert/genx/pkg/errors"
	"github.com/arthur-debert/genx/pkg/registry"
)

// Registry maps service names to instances. Names are unique unless a
// registration explicitly asks to override.
type Registry struct {
	items registry.Registry[any]
}

// New creates an empty service registry
func New() *Registry {
	return &Registry{items: registry.New[any]()}
}

// Register stores service under name. It fails with DUPLICATE_SERVICE when
// the name is taken and override is false.
func (r *Registry) Register(name string, service any, override bool) error {
	if !override {
		err := r.items.Register(name, service)
		if errors.IsErrorCode(err, errors.ErrAlreadyExists) {
			return errors.Wrapf(err, errors.ErrDuplicateService, "service %q already registered", name).
				WithDetail("service", name)
		}
		return err
	}

	_, err := r.items.Replace(name, service)
	return err
}

// Get returns the service registered under name, or nil
func (r *Registry) Get(name string) any {
	svc, _ := r.items.Lookup(name)
	return svc
}

// Lookup returns the service and whether it exists
func (r *Registry) Lookup(name string) (any, bool) {
	return r.items.Lookup(name)
}

// Has reports whether a service is registered under name
func (r *Registry) Has(name string) bool {
	return r.items.Has(name)
}

// Names returns registered service names in sorted order
func (r *Registry) Names() []string {
	return r.items.List()
}

// Count returns the number of registered services
func (r *Registry) Count() int {
	return r.items.Count()
}

// Clear drops every service
func (r *Registry) Clear() {
	r.items.Clear()
}

// Get fetches a service and asserts its type. The second result is false when
// the service is missing or has a different type.
func Get[T any](r *Registry, name string) (T, bool) {
	var zero T
	svc, ok := r.Lookup(name)
	if !ok {
		return zero, false
	}
	typed, ok := svc.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}
