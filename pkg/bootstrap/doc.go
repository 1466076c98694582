// Package bootstrap runs the features named by a container configuration.
//
// A bootstrap has two phases. The configuration rewrite loop repeatedly scans
// the configuration for CONF-stage features, strips them and runs them as a
// group; such features may replace the configuration wholesale, so the scan
// restarts until it finds none. The scheduler then classifies the remaining
// keys into the INIT, SERVICE, PLUGIN and READY groups and runs the groups in
// that order. Members of a group load concurrently; a group never starts
// before the previous one, hooks included, has settled.
package bootstrap
