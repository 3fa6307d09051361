// Package types defines the lifecycle and activation records, the Store
// interface, configuration, and standard error types for the Waypoint
// lifecycle engine.
// See docs/ARCHITECTURE.md § Data Model, § Store Interface.
package types
