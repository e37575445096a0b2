package actions

// Phase is one stage of the transactional hand-off.
type Phase int

const (
	RollbackPrepare Phase = iota
	RollbackExecute
	DeferredExecute
	CommitExecute
	Commit
)

// Phases lists every phase in execution order.
var Phases = []Phase{RollbackPrepare, RollbackExecute, DeferredExecute, CommitExecute, Commit}

func (p Phase) String() string {
	switch p {
	case RollbackPrepare:
		return "rollback_prepare"
	case RollbackExecute:
		return "rollback_execute"
	case DeferredExecute:
		return "deferred_execute"
	case CommitExecute:
		return "commit_execute"
	case Commit:
		return "commit"
	}
	return "unknown"
}

// Buffered reports whether the phase carries an action buffer.
func (p Phase) Buffered() bool {
	return p == RollbackExecute || p == DeferredExecute || p == CommitExecute
}

// Action is what the executor does with one item.
type Action int

const (
	NoOp Action = iota
	Create
	Remove
)

func (a Action) String() string {
	switch a {
	case Create:
		return "create"
	case Remove:
		return "remove"
	}
	return "noop"
}
