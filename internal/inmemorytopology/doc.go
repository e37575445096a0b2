// Package inmemorytopology provides a thread-safe, in-memory implementation
// of the topologystore.Store interface. It is designed for scenarios where the
// graph topology fits comfortably in memory and does not need to outlive a
// single scheduling pass.
package inmemorytopology
