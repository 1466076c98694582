// Package feature resolves feature names to descriptors.
//
// Features live in modules: statically linked tables of descriptors that
// register themselves into a Catalog at init time. A Registry maps the
// configuration keys of one container to descriptors, either through an
// explicit entry (module path plus optional export) or by searching the
// fallback roots, newest first, for an export named after the feature.
// Resolved descriptors are cached for the container's lifetime.
package feature
