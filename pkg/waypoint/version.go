// Package waypoint exposes module-level metadata.
package waypoint

// Version is the semantic version of the waypoint module.
const Version = "0.1.0"
