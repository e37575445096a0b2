package inmemorytopology

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/vk/catalogplan/internal/topologystore"
)

// Store implements the topologystore.Store interface using maps and a mutex.
// Dependency lists are slices so that declaration order survives.
type Store struct {
	mu    sync.RWMutex
	nodes map[string]struct{}
	order []string
	deps  map[string][]string // Key: dependent, Value: dependencies in declaration order
}

// New creates a new, empty in-memory topology store.
func New() *Store {
	return &Store{
		nodes: make(map[string]struct{}),
		deps:  make(map[string][]string),
	}
}

var _ topologystore.Store = (*Store)(nil)

// AddNode adds a new node to the store.
func (s *Store) AddNode(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[key]; exists {
		return fmt.Errorf("'%s': %w", key, topologystore.ErrDuplicateNode)
	}
	s.nodes[key] = struct{}{}
	s.order = append(s.order, key)
	return nil
}

// AddDependency records that `from` requires `to`.
func (s *Store) AddDependency(_ context.Context, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[from]; !exists {
		return fmt.Errorf("dependency source '%s': %w", from, topologystore.ErrNodeNotFound)
	}
	if _, exists := s.nodes[to]; !exists {
		return fmt.Errorf("dependency target '%s': %w", to, topologystore.ErrNodeNotFound)
	}
	if from == to {
		return fmt.Errorf("'%s': %w", from, topologystore.ErrSelfDependency)
	}
	if slices.Contains(s.deps[from], to) {
		return nil
	}
	s.deps[from] = append(s.deps[from], to)
	return nil
}

// DependenciesOf returns the dependencies of key in declaration order.
func (s *Store) DependenciesOf(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.nodes[key]; !exists {
		return nil, fmt.Errorf("'%s': %w", key, topologystore.ErrNodeNotFound)
	}
	return slices.Clone(s.deps[key]), nil
}

// Nodes returns all node keys in insertion order.
func (s *Store) Nodes(_ context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.order)
}
