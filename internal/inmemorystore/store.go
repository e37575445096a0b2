package inmemorystore

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/catalogplan/internal/catalog"
)

// Catalog is an in-memory catalog.Store. Objects keep insertion order per
// container.
type Catalog struct {
	mu      sync.RWMutex
	objects map[catalog.Container][]catalog.Object
	order   []catalog.Entry

	failErr   error
	failTimes int
	lookups   int
}

var _ catalog.Store = (*Catalog)(nil)

// New creates a catalog seeded with the given entries.
func New(entries ...catalog.Entry) *Catalog {
	c := &Catalog{objects: make(map[catalog.Container][]catalog.Object)}
	for _, e := range entries {
		// Seeding only fails for unknown collections, which is a test bug.
		if err := c.Put(context.Background(), e); err != nil {
			panic(err)
		}
	}
	return c
}

// Put adds or replaces an object. Objects are identified by ID inside their
// container.
func (c *Catalog) Put(_ context.Context, e catalog.Entry) error {
	if !catalog.Valid(e.Collection) {
		return fmt.Errorf("%w '%s'", catalog.ErrUnknownCollection, e.Collection)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	key := e.Container()
	obj := catalog.Object{ID: e.ID, Name: e.Name}
	for i, existing := range c.objects[key] {
		if catalog.SameID(existing.ID, e.ID) {
			c.objects[key][i] = obj
			for j := range c.order {
				if c.order[j].Container() == key && catalog.SameID(c.order[j].ID, e.ID) {
					c.order[j] = e
				}
			}
			return nil
		}
	}
	c.objects[key] = append(c.objects[key], obj)
	c.order = append(c.order, e)
	return nil
}

// Entries returns every stored entry in insertion order.
func (c *Catalog) Entries(_ context.Context) ([]catalog.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]catalog.Entry(nil), c.order...), nil
}

// Find implements catalog.Catalog.
func (c *Catalog) Find(_ context.Context, container catalog.Container, id, name string) (catalog.Object, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lookups++
	if c.failTimes != 0 {
		if c.failTimes > 0 {
			c.failTimes--
		}
		return catalog.Object{}, false, c.failErr
	}
	if id == "" && name == "" {
		return catalog.Object{}, false, nil
	}
	for _, obj := range c.objects[container] {
		if id != "" && catalog.SameID(obj.ID, id) {
			return obj, true, nil
		}
		if id == "" && obj.Name == name {
			return obj, true, nil
		}
	}
	return catalog.Object{}, false, nil
}

// NewID implements catalog.Catalog.
func (c *Catalog) NewID() string { return catalog.NewGUID() }

// FailWith makes the next `times` lookups fail with err. A negative count
// fails every lookup until cleared with FailWith(nil, 0).
func (c *Catalog) FailWith(err error, times int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.failErr = err
	c.failTimes = times
}

// Lookups returns the number of Find calls served so far.
func (c *Catalog) Lookups() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.lookups
}
