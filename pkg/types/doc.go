// Package types defines the core types shared by the bootstrap engine:
// the lifecycle Stage enum, the Feature descriptor every pluggable feature
// exposes, the ordered Config mapping and the Host surface features use to
// call back into their container.
package types
