// Package container ties configuration, feature resolution, bootstrap and
// services into an application container with a one-way lifecycle:
// Created, Starting, Started (or Failed), Stopping, Stopped. A stopped
// container is inert; create a new one to start again.
package container
