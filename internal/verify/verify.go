// Package verify checks a set against the catalog before any action list is
// built.
//
// On install, every entity about to be created is located in its catalog
// container, and identifier or name clashes with existing objects are
// resolved through a decision.Decider. Entities that must already exist are
// required to be found, and their identifiers are taken from the catalog.
//
// On uninstall, entities that are already gone are flagged ObjectNotFound
// so that no action is emitted for them.
package verify

import (
	"context"
	"strings"

	"github.com/vk/catalogplan/internal/catalog"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/decision"
	"github.com/vk/catalogplan/internal/entity"
	"github.com/vk/catalogplan/internal/metrics"
	"github.com/vk/catalogplan/internal/session"
)

// Verifier runs the catalog checks of one pass.
type Verifier struct {
	Session    session.Session
	Decider    decision.Decider
	MaxRetries int
	Metrics    *metrics.Metrics
}

// target is an entity as the verifier sees it.
type target struct {
	kind      entity.Kind
	state     *entity.State
	container catalog.Container
	// id points at the entity's identifier field. It is filled in when the
	// catalog decides it.
	id   *string
	name string
	// byName marks collections whose objects are identified by name.
	byName bool
}

func (t *target) ident() string {
	if t.id == nil {
		return ""
	}
	return *t.id
}

func (t *target) adopt(id string) {
	if t.id != nil && *t.id == "" {
		*t.id = id
	}
}

func (v *Verifier) resolve(ctx context.Context, c decision.Conflict) (decision.Decision, error) {
	v.Metrics.RecordConflict(c.Kind.String(), c.Type.String())
	ctxlog.FromContext(ctx).Warn("Catalog conflict", "kind", c.Kind.String(), "key", c.Key, "conflict", c.Type.String(), "attempt", c.Attempt, "detail", c.Message())

	d, err := v.Decider.Resolve(ctx, c)
	if err != nil {
		return decision.Abort, err
	}
	v.Metrics.RecordDecision(d.String())
	return d, nil
}

// find runs one catalog lookup. Failed lookups go to the decider until
// they succeed, are ignored, or the retries run out. An ignored failure
// reads as not found.
func (v *Verifier) find(ctx context.Context, t *target, id, name string) (catalog.Object, bool, error) {
	for attempt := 1; ; attempt++ {
		obj, found, err := v.Session.Find(ctx, t.container, id, name)
		if err == nil {
			return obj, found, nil
		}
		c := decision.Conflict{
			Type: decision.CatalogUnavailable, Kind: t.kind, Key: t.state.Key,
			ID: id, Name: name, Err: err, Attempt: attempt,
		}
		d, derr := v.resolve(ctx, c)
		if derr != nil {
			return catalog.Object{}, false, derr
		}
		switch d {
		case decision.Ignore:
			return catalog.Object{}, false, nil
		case decision.Retry:
			if attempt > v.MaxRetries {
				return catalog.Object{}, false, &RetriesExhaustedError{Kind: t.kind, Key: t.state.Key, Attempts: attempt, Err: err}
			}
			v.Session.Refresh()
		default:
			return catalog.Object{}, false, &ConflictAbortedError{Kind: t.kind, Key: t.state.Key, Conflict: c.Type, Err: err}
		}
	}
}

// lookup finds the entity's own object, by identifier when it has one.
func (v *Verifier) lookup(ctx context.Context, t *target) (catalog.Object, bool, error) {
	if id := t.ident(); id != "" {
		return v.find(ctx, t, id, "")
	}
	return v.find(ctx, t, "", t.name)
}

// locate classifies the catalog state of an entity about to be created. A
// zero conflict type means no conflict; found then tells whether the
// entity's own object already exists.
func (v *Verifier) locate(ctx context.Context, t *target) (c decision.Conflict, found bool, err error) {
	c = decision.Conflict{Kind: t.kind, Key: t.state.Key, ID: t.ident(), Name: t.name}

	if id := t.ident(); id != "" {
		obj, ok, err := v.find(ctx, t, id, "")
		if err != nil {
			return c, false, err
		}
		if ok {
			if t.name == "" || strings.EqualFold(obj.Name, t.name) {
				c.Existing = obj
				return c, true, nil
			}
			c.Type = decision.IdentifierConflict
			c.Existing = obj
			return c, false, nil
		}
	}

	if t.name == "" {
		return c, false, nil
	}
	obj, ok, err := v.find(ctx, t, "", t.name)
	if err != nil || !ok {
		return c, false, err
	}
	c.Existing = obj
	// A reinstall finds what the previous install created.
	if t.byName || (t.ident() == "" && t.state.Present) {
		return c, true, nil
	}
	c.Type = decision.NameConflict
	return c, false, nil
}

// create settles an entity about to be created.
func (v *Verifier) create(ctx context.Context, t *target) error {
	log := ctxlog.FromContext(ctx)
	for attempt := 1; ; attempt++ {
		c, found, err := v.locate(ctx, t)
		if err != nil {
			return err
		}
		if c.Type == 0 {
			if found {
				t.adopt(c.Existing.ID)
				log.Debug("Catalog object exists, updating in place", "kind", t.kind.String(), "key", t.state.Key, "id", t.ident())
				return nil
			}
			t.adopt(v.Session.NewID())
			log.Debug("Catalog object will be created", "kind", t.kind.String(), "key", t.state.Key, "id", t.ident())
			return nil
		}

		c.Attempt = attempt
		d, err := v.resolve(ctx, c)
		if err != nil {
			return err
		}
		switch d {
		case decision.Ignore:
			t.adopt(c.Existing.ID)
			log.Debug("Catalog conflict ignored", "kind", t.kind.String(), "key", t.state.Key, "id", t.ident())
			return nil
		case decision.Retry:
			if attempt > v.MaxRetries {
				return &RetriesExhaustedError{Kind: t.kind, Key: t.state.Key, Attempts: attempt}
			}
			v.Session.Refresh()
		default:
			return &ConflictAbortedError{Kind: t.kind, Key: t.state.Key, Conflict: c.Type}
		}
	}
}

// require finds an entity that must already exist.
func (v *Verifier) require(ctx context.Context, t *target) error {
	obj, found, err := v.lookup(ctx, t)
	if err != nil {
		return err
	}
	if !found {
		return &EntityNotFoundError{Kind: t.kind, Key: t.state.Key, Container: t.container}
	}
	t.adopt(obj.ID)
	ctxlog.FromContext(ctx).Debug("Catalog object located", "kind", t.kind.String(), "key", t.state.Key, "id", obj.ID)
	return nil
}
