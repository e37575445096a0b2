// Package decision resolves catalog conflicts found during verification,
// either by a fixed policy or by asking the operator.
package decision

import (
	"context"
	"fmt"

	"github.com/vk/catalogplan/internal/catalog"
	"github.com/vk/catalogplan/internal/entity"
)

// Decision is the answer to a conflict.
type Decision int

const (
	Abort Decision = iota
	Retry
	Ignore
)

func (d Decision) String() string {
	switch d {
	case Retry:
		return "retry"
	case Ignore:
		return "ignore"
	default:
		return "abort"
	}
}

// Parse maps the configuration spelling of a decision.
func Parse(s string) (Decision, error) {
	switch s {
	case "abort":
		return Abort, nil
	case "retry":
		return Retry, nil
	case "ignore":
		return Ignore, nil
	}
	return Abort, fmt.Errorf("unknown decision '%s' (want abort, retry or ignore)", s)
}

// Type classifies a conflict.
type Type int

const (
	// IdentifierConflict: an object with the entity's identifier exists
	// under a different name.
	IdentifierConflict Type = iota + 1
	// NameConflict: an object with the entity's name exists under a
	// different identifier.
	NameConflict
	// CatalogUnavailable: the lookup itself failed.
	CatalogUnavailable
)

func (t Type) String() string {
	switch t {
	case IdentifierConflict:
		return "identifier"
	case NameConflict:
		return "name"
	case CatalogUnavailable:
		return "unavailable"
	}
	return "none"
}

// Conflict describes what the verifier ran into.
type Conflict struct {
	Type     Type
	Kind     entity.Kind
	Key      string
	ID       string
	Name     string
	Existing catalog.Object
	Err      error
	Attempt  int
}

// Message is a one-line human description of the conflict.
func (c Conflict) Message() string {
	switch c.Type {
	case IdentifierConflict:
		return fmt.Sprintf("%s '%s': identifier %s already belongs to '%s'", c.Kind, c.Key, c.ID, c.Existing.Name)
	case NameConflict:
		return fmt.Sprintf("%s '%s': name '%s' is already used by %s", c.Kind, c.Key, c.Name, c.Existing.ID)
	case CatalogUnavailable:
		return fmt.Sprintf("%s '%s': catalog lookup failed: %v", c.Kind, c.Key, c.Err)
	}
	return fmt.Sprintf("%s '%s'", c.Kind, c.Key)
}

// Decider resolves a conflict. Resolve may block, for instance on user
// input.
type Decider interface {
	Resolve(ctx context.Context, c Conflict) (Decision, error)
}

// Func adapts a function to the Decider interface.
type Func func(ctx context.Context, c Conflict) (Decision, error)

func (f Func) Resolve(ctx context.Context, c Conflict) (Decision, error) { return f(ctx, c) }

// Fixed answers every conflict by policy.
type Fixed struct {
	// Conflicts answers identifier and name conflicts.
	Conflicts Decision
	// Unavailable answers failed lookups.
	Unavailable Decision
}

// Resolve implements Decider.
func (f Fixed) Resolve(_ context.Context, c Conflict) (Decision, error) {
	if c.Type == CatalogUnavailable {
		return f.Unavailable, nil
	}
	return f.Conflicts, nil
}
