package dag

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/entity"
	"github.com/vk/catalogplan/internal/inmemorytopology"
	"github.com/vk/catalogplan/internal/topologystore"
)

// Order is an entity list whose sequence can be sorted.
type Order interface {
	Key(i int) string
	Lookup(key string) (int, bool)
	Sequence() entity.Sequence
	Commit(entity.Sequence)
}

// Build creates the topology of order from the given edges. An edge to an
// undeclared key is a DanglingDependencyError, an edge from a key to itself
// a CircularDependencyError.
func Build(ctx context.Context, order Order, edges []entity.Edge) (topologystore.Store, error) {
	store := inmemorytopology.New()
	seq := order.Sequence()
	for _, i := range seq.Indices() {
		if err := store.AddNode(ctx, order.Key(i)); err != nil {
			return nil, err
		}
	}
	for _, e := range edges {
		err := store.AddDependency(ctx, e.From, e.To)
		switch {
		case err == nil:
		case errors.Is(err, topologystore.ErrSelfDependency):
			return nil, &CircularDependencyError{Key: e.From}
		case errors.Is(err, topologystore.ErrNodeNotFound):
			if _, ok := order.Lookup(e.From); !ok {
				return nil, fmt.Errorf("edge from undeclared '%s': %w", e.From, err)
			}
			return nil, &DanglingDependencyError{From: e.From, To: e.To}
		default:
			return nil, err
		}
	}
	return store, nil
}

type sorter struct {
	order Order
	store topologystore.Store
	seq   *entity.Sequence
}

// Sort reorders order so that every dependency recorded in store precedes
// its dependent. On error the order is left unchanged.
func Sort(ctx context.Context, order Order, store topologystore.Store) error {
	logger := ctxlog.FromContext(ctx)

	seq := order.Sequence()
	s := &sorter{order: order, store: store, seq: &seq}

	for root := seq.Front(); root >= 0; root = seq.Next(root) {
		if err := s.resolve(ctx, nil, root, root); err != nil {
			return err
		}
	}
	if err := verify(ctx, order, &seq, store); err != nil {
		return err
	}

	order.Commit(seq)
	logger.Debug("Dependency sort committed", "items", seq.Len())
	return nil
}

// resolve places every dependency of current before root. chain holds the
// keys on the path from root to current, excluding current.
func (s *sorter) resolve(ctx context.Context, chain []string, root, current int) error {
	key := s.order.Key(current)
	deps, err := s.store.DependenciesOf(ctx, key)
	if err != nil {
		return err
	}

	for _, depKey := range deps {
		dep, ok := s.order.Lookup(depKey)
		if !ok {
			return &DanglingDependencyError{From: key, To: depKey}
		}
		if s.placedBefore(root, dep) {
			continue
		}
		if depKey == key || slices.Contains(chain, depKey) {
			return &CircularDependencyError{Key: depKey, Chain: append(slices.Clone(chain), key)}
		}
		if !s.pendingAfter(root, dep) {
			return &DanglingDependencyError{From: key, To: depKey}
		}

		if err := s.resolve(ctx, append(chain, key), root, dep); err != nil {
			return err
		}
		ctxlog.FromContext(ctx).Debug("Placing dependency", "dependency", depKey, "before", s.order.Key(root))
		s.seq.MoveBefore(dep, root)
	}
	return nil
}

// placedBefore walks backward from root's predecessor.
func (s *sorter) placedBefore(root, target int) bool {
	for i := s.seq.Prev(root); i >= 0; i = s.seq.Prev(i) {
		if i == target {
			return true
		}
	}
	return false
}

// pendingAfter walks forward from root's successor.
func (s *sorter) pendingAfter(root, target int) bool {
	for i := s.seq.Next(root); i >= 0; i = s.seq.Next(i) {
		if i == target {
			return true
		}
	}
	return false
}

// verify asserts that every edge points backwards in seq.
func verify(ctx context.Context, order Order, seq *entity.Sequence, store topologystore.Store) error {
	pos := make(map[string]int, seq.Len())
	for n, i := range seq.Indices() {
		pos[order.Key(i)] = n
	}
	for _, i := range seq.Indices() {
		key := order.Key(i)
		deps, err := store.DependenciesOf(ctx, key)
		if err != nil {
			return err
		}
		for _, dep := range deps {
			if pos[dep] >= pos[key] {
				return &OrderViolationError{Key: key, Dependency: dep}
			}
		}
	}
	return nil
}

// Verify checks the committed order of a list against its topology.
func Verify(ctx context.Context, order Order, store topologystore.Store) error {
	seq := order.Sequence()
	return verify(ctx, order, &seq, store)
}
