package entity

// Request is the action the installer asked for on an install unit.
type Request int

const (
	RequestNone Request = iota
	RequestInstall
	RequestRemove
)

func (r Request) String() string {
	switch r {
	case RequestInstall:
		return "install"
	case RequestRemove:
		return "remove"
	default:
		return "none"
	}
}

// ParseRequest maps the manifest spelling of a request. The empty string is
// RequestNone.
func ParseRequest(s string) (Request, bool) {
	switch s {
	case "", "none":
		return RequestNone, true
	case "install":
		return RequestInstall, true
	case "remove":
		return RequestRemove, true
	}
	return RequestNone, false
}

// Direction is the direction of a scheduling pass.
type Direction int

const (
	DirectionInstall Direction = iota
	DirectionUninstall
)

func (d Direction) String() string {
	if d == DirectionUninstall {
		return "uninstall"
	}
	return "install"
}

// RefState records in which directions an entity is referenced by a
// transitioning entity.
type RefState uint8

const (
	NotReferenced          RefState = 0
	ReferencedForInstall   RefState = 1
	ReferencedForUninstall RefState = 2
	ReferencedForBoth               = ReferencedForInstall | ReferencedForUninstall
)

// With widens r by the given direction.
func (r RefState) With(d Direction) RefState {
	if d == DirectionUninstall {
		return r | ReferencedForUninstall
	}
	return r | ReferencedForInstall
}

// Has reports whether r includes the given direction.
func (r RefState) Has(d Direction) bool {
	return r.With(d) == r
}

func (r RefState) String() string {
	switch r {
	case ReferencedForInstall:
		return "referenced_for_install"
	case ReferencedForUninstall:
		return "referenced_for_uninstall"
	case ReferencedForBoth:
		return "referenced_for_both"
	default:
		return "not_referenced"
	}
}

// Counter counts distinct referencing entities per direction.
type Counter struct {
	Install   int
	Uninstall int
}

// Of returns the count for the given direction.
func (c Counter) Of(d Direction) int {
	if d == DirectionUninstall {
		return c.Uninstall
	}
	return c.Install
}

func (c *Counter) add(d Direction) {
	if d == DirectionUninstall {
		c.Uninstall++
		return
	}
	c.Install++
}

// State is the scheduling state shared by every entity that can be
// installed, located or removed.
type State struct {
	Key string
	// Unit is the owning install unit. Empty means the entity is a locater:
	// it refers to an existing catalog object and is never created.
	Unit    string
	Present bool
	Request Request

	Ref            RefState
	Counts         map[Kind]Counter
	ObjectNotFound bool
}

// HasLocal reports whether the entity is owned by an install unit.
func (s *State) HasLocal() bool { return s.Unit != "" }

// Installing reports whether the entity is being installed in this pass.
func (s *State) Installing() bool { return s.HasLocal() && s.Request == RequestInstall }

// Uninstalling reports whether the entity is being removed in this pass.
func (s *State) Uninstalling() bool {
	return s.HasLocal() && s.Present && s.Request == RequestRemove
}

// Transitioning reports whether the entity changes state in direction d.
func (s *State) Transitioning(d Direction) bool {
	if d == DirectionUninstall {
		return s.Uninstalling()
	}
	return s.Installing()
}

// WillBePresent reports whether the entity is installed once the pass
// finishes. Locaters are never decided here; they are verified against the
// catalog instead.
func (s *State) WillBePresent() bool {
	return s.Installing() || (s.Present && s.Request != RequestRemove)
}

// RefCount is the number of distinct entities of kind k referencing this
// one in direction d.
func (s *State) RefCount(k Kind, d Direction) int {
	return s.Counts[k].Of(d)
}

// Reference marks the entity as referenced by an entity of kind k in
// direction d. Callers are responsible for deduplication.
func (s *State) Reference(k Kind, d Direction) {
	s.Ref = s.Ref.With(d)
	if s.Counts == nil {
		s.Counts = make(map[Kind]Counter)
	}
	c := s.Counts[k]
	c.add(d)
	s.Counts[k] = c
}

// Common returns the state itself. It lets generic code reach the state
// embedded in every entity type.
func (s *State) Common() *State { return s }

// Stateful is implemented by every entity type through its embedded State.
type Stateful interface {
	Common() *State
}
