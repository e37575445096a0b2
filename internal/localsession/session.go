// Package localsession provides a concrete implementation of the
// session.Session and session.Factory interfaces over an in-process
// catalog.Catalog.
package localsession

import (
	"context"
	"errors"
	"strings"

	"github.com/vk/catalogplan/internal/catalog"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/metrics"
	"github.com/vk/catalogplan/internal/session"
)

// Factory implements session.Factory for local runs.
type Factory struct {
	Catalog catalog.Catalog
	Metrics *metrics.Metrics
}

// NewSession creates a session over the factory's catalog.
func (f *Factory) NewSession(ctx context.Context) (session.Session, error) {
	if f.Catalog == nil {
		return nil, errors.New("localsession: no catalog configured")
	}
	ctxlog.FromContext(ctx).Debug("Catalog session opened")
	return &Session{
		catalog: f.Catalog,
		metrics: f.Metrics,
		cache:   make(map[cacheKey]catalog.Object),
	}, nil
}

type cacheKey struct {
	container catalog.Container
	id        string
}

// Session implements session.Session. Objects found by identifier are
// cached for the lifetime of the session.
type Session struct {
	catalog catalog.Catalog
	metrics *metrics.Metrics
	cache   map[cacheKey]catalog.Object
	lookups int
	closed  bool
}

func key(c catalog.Container, id string) cacheKey {
	c.Parent = strings.ToUpper(c.Parent)
	return cacheKey{container: c, id: strings.ToUpper(strings.Trim(id, "{}"))}
}

// Find implements session.Session.
func (s *Session) Find(ctx context.Context, c catalog.Container, id, name string) (catalog.Object, bool, error) {
	if s.closed {
		return catalog.Object{}, false, session.ErrClosed
	}
	if id != "" {
		if obj, ok := s.cache[key(c, id)]; ok {
			s.metrics.RecordLookup(c.Collection, metrics.LookupCached)
			return obj, true, nil
		}
	}

	s.lookups++
	obj, found, err := s.catalog.Find(ctx, c, id, name)
	switch {
	case err != nil:
		s.metrics.RecordLookup(c.Collection, metrics.LookupError)
		return catalog.Object{}, false, err
	case !found:
		s.metrics.RecordLookup(c.Collection, metrics.LookupMissing)
		return catalog.Object{}, false, nil
	}
	s.metrics.RecordLookup(c.Collection, metrics.LookupFound)
	s.cache[key(c, obj.ID)] = obj
	return obj, true, nil
}

// NewID implements session.Session.
func (s *Session) NewID() string { return s.catalog.NewID() }

// Refresh implements session.Session.
func (s *Session) Refresh() { clear(s.cache) }

// Lookups returns the number of lookups that reached the catalog.
func (s *Session) Lookups() int { return s.lookups }

// Close implements session.Session. Closing twice is harmless.
func (s *Session) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	ctxlog.FromContext(ctx).Debug("Catalog session closed", "lookups", s.lookups)
	return nil
}
