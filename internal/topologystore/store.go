// Package topologystore defines the interface for storing and retrieving the
// static structure of a dependency graph.
//
// The topology store isolates the dependency declarations (which entity
// requires which) from the ordering the sorter produces. A store is created
// once per entity list, populated while the graph is built, and only read
// by the sorter afterwards.
package topologystore

import (
	"context"
	"errors"
)

var (
	// ErrNodeNotFound is returned when an edge or query names a node that
	// was never added.
	ErrNodeNotFound = errors.New("node not found in topology")
	// ErrDuplicateNode is returned when a node is added twice.
	ErrDuplicateNode = errors.New("node already exists in topology")
	// ErrSelfDependency is returned for an edge from a node to itself.
	ErrSelfDependency = errors.New("node cannot depend on itself")
)

// Store is the interface for managing the static topology of a dependency
// graph whose nodes are entity keys.
type Store interface {
	// AddNode registers a node. Adding the same key twice is an error.
	AddNode(ctx context.Context, key string) error

	// AddDependency records that `from` requires `to`, meaning `to` must be
	// placed before `from`. Both nodes must already exist. Repeating an
	// existing edge is a no-op and keeps its original position.
	AddDependency(ctx context.Context, from, to string) error

	// DependenciesOf returns the direct dependencies of key in the order
	// they were declared.
	DependenciesOf(ctx context.Context, key string) ([]string, error)

	// Nodes returns every node key in insertion order.
	Nodes(ctx context.Context) []string
}
