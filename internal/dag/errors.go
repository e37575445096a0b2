package dag

import (
	"fmt"
	"strings"
)

// CircularDependencyError reports a dependency chain that reaches back to
// one of its own members.
type CircularDependencyError struct {
	Key   string
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Chain) == 0 {
		return fmt.Sprintf("cycle detected involving '%s'", e.Key)
	}
	return fmt.Sprintf("cycle detected involving '%s' (%s -> %s)", e.Key, strings.Join(e.Chain, " -> "), e.Key)
}

// DanglingDependencyError reports a dependency on an entity that is not part
// of the list.
type DanglingDependencyError struct {
	From string
	To   string
}

func (e *DanglingDependencyError) Error() string {
	return fmt.Sprintf("'%s' depends on '%s', which is not declared", e.From, e.To)
}

// OrderViolationError reports an edge whose dependency was not placed before
// its dependent.
type OrderViolationError struct {
	Key        string
	Dependency string
}

func (e *OrderViolationError) Error() string {
	return fmt.Sprintf("'%s' is ordered before its dependency '%s'", e.Key, e.Dependency)
}
