// Package catalog defines the lookup contract of the external catalog the
// scheduler verifies entities against. The scheduler only ever reads from a
// catalog; creating and deleting objects is the executor's job.
package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Collection names.
const (
	Partitions       = "partitions"
	PartitionRoles   = "partition_roles"
	Applications     = "applications"
	ApplicationRoles = "roles"
	Subscriptions    = "subscriptions"
)

// Collections lists every known collection.
var Collections = []string{Partitions, PartitionRoles, Applications, ApplicationRoles, Subscriptions}

// ErrUnknownCollection is returned for a container naming an unknown
// collection.
var ErrUnknownCollection = errors.New("unknown catalog collection")

// Container addresses a collection inside its parent object. Parent is the
// identifier of the owning object, empty for top-level collections and for
// applications in the default partition.
type Container struct {
	Collection string
	Parent     string
}

func (c Container) String() string {
	if c.Parent == "" {
		return c.Collection
	}
	return c.Collection + "@" + c.Parent
}

// Object is a catalog object as seen by a lookup.
type Object struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Catalog looks objects up in a container.
type Catalog interface {
	// Find returns the object with the given identifier, or by name when id
	// is empty. A lookup that simply finds nothing is not an error.
	Find(ctx context.Context, container Container, id, name string) (Object, bool, error)
	// NewID mints a fresh object identifier.
	NewID() string
}

// Entry is one object together with its container, as stored and imported.
type Entry struct {
	Collection string `yaml:"collection"`
	Parent     string `yaml:"parent,omitempty"`
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
}

// Container returns the container of the entry.
func (e Entry) Container() Container {
	return Container{Collection: e.Collection, Parent: e.Parent}
}

// Store is a catalog that can also be populated and listed.
type Store interface {
	Catalog
	Put(ctx context.Context, e Entry) error
	Entries(ctx context.Context) ([]Entry, error)
}

// NewGUID returns a new identifier in registry format, e.g.
// `{0F3A...}`.
func NewGUID() string {
	return "{" + strings.ToUpper(uuid.NewString()) + "}"
}

// Valid reports whether collection is known.
func Valid(collection string) bool {
	return slices.Contains(Collections, collection)
}

// SameID compares identifiers case-insensitively and ignores braces.
func SameID(a, b string) bool {
	return strings.EqualFold(strings.Trim(a, "{}"), strings.Trim(b, "{}"))
}
