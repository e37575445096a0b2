// Package actions builds the serialized action buffer of one phase.
//
// A buffer holds one section per scheduled entity kind, always in the same
// kind order for a given effective direction, and each section lists the
// eligible entities of that kind in list order. Install buffers walk kinds
// and lists forward; uninstall buffers and install rollbacks walk them in
// reverse, so that dependents are torn down before what they depend on.
//
// Build is a pure function of its request: it reads the set and the
// settings and never touches the catalog.
package actions

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/vk/catalogplan/internal/actionbuf"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/entity"
	"github.com/vk/catalogplan/internal/settings"
)

// Request describes the buffer to build.
type Request struct {
	Direction entity.Direction
	Phase     Phase
	Set       *entity.Set
	Settings  *settings.Settings
}

// Result is a built buffer.
type Result struct {
	Phase  Phase
	Buffer []byte
	// Emitted counts items per kind and action.
	Emitted map[entity.Kind]map[Action]int
	// Progress is the summed cost of every emitted item.
	Progress int
}

// Items returns the number of items emitted across all kinds.
func (r *Result) Items() int {
	n := 0
	for _, byAction := range r.Emitted {
		for _, c := range byAction {
			n += c
		}
	}
	return n
}

type builder struct {
	req     Request
	set     *entity.Set
	reverse bool
	w       *actionbuf.Writer
	res     *Result
}

// Build serializes the action buffer of req.Phase.
func Build(ctx context.Context, req Request) (*Result, error) {
	if !req.Phase.Buffered() {
		return nil, fmt.Errorf("phase %s carries no action buffer", req.Phase)
	}
	if req.Set == nil || req.Settings == nil {
		return nil, errors.New("build request needs a set and settings")
	}

	b := &builder{
		req:     req,
		set:     req.Set,
		reverse: (req.Direction == entity.DirectionUninstall) != (req.Phase == RollbackExecute),
		w:       actionbuf.NewWriter(),
		res:     &Result{Phase: req.Phase, Emitted: make(map[entity.Kind]map[Action]int)},
	}

	kinds := slices.Clone(entity.ScheduledKinds)
	if b.reverse {
		slices.Reverse(kinds)
	}
	for _, k := range kinds {
		b.kind(k)
	}
	if err := b.w.Err(); err != nil {
		return nil, fmt.Errorf("encoding %s buffer: %w", req.Phase, err)
	}

	b.res.Buffer = b.w.Bytes()
	ctxlog.FromContext(ctx).Debug("Action buffer built",
		"direction", req.Direction.String(),
		"phase", req.Phase.String(),
		"items", b.res.Items(),
		"bytes", len(b.res.Buffer),
		"progress", b.res.Progress,
	)
	return b.res, nil
}

func (b *builder) kind(k entity.Kind) {
	s := b.set
	switch k {
	case entity.KindPartition:
		emit(b, k, &s.Partitions, func(*entity.Partition) bool { return false }, b.partition)
	case entity.KindPartitionUser:
		emit(b, k, &s.PartitionUsers, func(*entity.PartitionUser) bool { return false }, b.partitionUser)
	case entity.KindUserInPartitionRole:
		emit(b, k, &s.UsersInPartitionRoles, func(*entity.UserInPartitionRole) bool { return false }, b.userInPartitionRole)
	case entity.KindApplication:
		emit(b, k, &s.Applications, func(*entity.Application) bool { return false }, b.application)
	case entity.KindApplicationRole:
		emit(b, k, &s.ApplicationRoles, func(*entity.ApplicationRole) bool { return false }, b.applicationRole)
	case entity.KindUserInApplicationRole:
		emit(b, k, &s.UsersInApplicationRoles, func(*entity.UserInApplicationRole) bool { return false }, b.userInApplicationRole)
	case entity.KindAssembly:
		emit(b, k, &s.Assemblies, (*entity.Assembly).RunInCommit, b.assembly)
	case entity.KindRoleAssignment:
		b.roleAssignments()
	case entity.KindSubscription:
		emit(b, k, &s.Subscriptions, func(e *entity.Subscription) bool { return s.InCommit(e.Assembly) }, b.subscription)
	}
}

// eligible reports whether an entity belongs in the current phase.
func (b *builder) eligible(st *entity.State, inCommit bool) bool {
	d := b.req.Direction
	if !st.Transitioning(d) {
		return false
	}
	if d == entity.DirectionUninstall && st.ObjectNotFound {
		return false
	}
	switch b.req.Phase {
	case DeferredExecute:
		return !inCommit
	case CommitExecute:
		return inCommit
	case RollbackExecute:
		return true
	}
	return false
}

// action is what happens to an eligible entity in the current phase.
func (b *builder) action(st *entity.State) Action {
	install := b.req.Direction == entity.DirectionInstall
	if b.req.Phase != RollbackExecute {
		if install {
			return Create
		}
		return Remove
	}
	if !install {
		return Create
	}
	if st.Present {
		return NoOp
	}
	return Remove
}

func (b *builder) cost(k entity.Kind, a Action) int {
	if a == NoOp {
		return 0
	}
	return b.req.Settings.Cost(k.String(), a.String())
}

func (b *builder) add(k entity.Kind, a Action, items *[]actionbuf.Item, node actionbuf.Node) {
	c := b.cost(k, a)
	*items = append(*items, actionbuf.Item{Action: int(a), Cost: c, Node: node})
	if b.res.Emitted[k] == nil {
		b.res.Emitted[k] = make(map[Action]int)
	}
	b.res.Emitted[k][a]++
	b.res.Progress += c
}

// section writes the header and items of one kind. The section is written
// even when it has no items.
func (b *builder) section(k entity.Kind, items []actionbuf.Item) {
	texts := b.req.Settings.Section(k.String(), b.reverse)
	b.w.Section(actionbuf.Section{
		Operation:   texts.Operation,
		Description: texts.Description,
		Template:    texts.Template,
		Items:       items,
	})
}

func emit[T any, P interface {
	*T
	entity.Stateful
}](b *builder, k entity.Kind, l *entity.List[T], inCommit func(P) bool, node func(P, Action) actionbuf.Node) {
	var items []actionbuf.Item
	for _, e := range l.Walk(b.reverse) {
		p := P(e)
		st := p.Common()
		if !b.eligible(st, inCommit(p)) {
			continue
		}
		a := b.action(st)
		b.add(k, a, &items, node(p, a))
	}
	b.section(k, items)
}
