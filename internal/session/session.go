// Package session defines the interfaces for the catalog session a
// verification pass runs in. A session owns the catalog handle for the
// duration of one pass, so no component has to reach for a global one.
package session

import (
	"context"
	"errors"

	"github.com/vk/catalogplan/internal/catalog"
)

// ErrClosed is returned by a session used after Close.
var ErrClosed = errors.New("session is closed")

// Factory creates a Session for one pass. Different implementations can
// back the session with different catalogs.
type Factory interface {
	NewSession(ctx context.Context) (Session, error)
}

// Session is a catalog lookup scope.
type Session interface {
	// Find looks an object up, see catalog.Catalog.
	Find(ctx context.Context, container catalog.Container, id, name string) (catalog.Object, bool, error)
	// NewID mints a new object identifier.
	NewID() string
	// Refresh drops anything the session cached, so that the next lookup
	// sees the catalog's current state.
	Refresh()
	// Close releases any resources held by the session.
	Close(ctx context.Context) error
}
