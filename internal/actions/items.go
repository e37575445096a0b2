package actions

import (
	"github.com/vk/catalogplan/internal/actionbuf"
	"github.com/vk/catalogplan/internal/config"
	"github.com/vk/catalogplan/internal/entity"
)

// Child node tags.
const (
	tagProperty  = "property"
	tagComponent = "component"
	tagInterface = "interface"
	tagMethod    = "method"
	tagRole      = "role"
)

func properties(props []config.Property) []actionbuf.Node {
	out := make([]actionbuf.Node, 0, len(props))
	for _, p := range props {
		out = append(out, actionbuf.Leaf(tagProperty, p.Name, p.Value))
	}
	return out
}

// withProperties attaches props only to creations. Removals carry none.
func withProperties(n actionbuf.Node, a Action, props []config.Property) actionbuf.Node {
	if a == Create {
		n.Children = append(n.Children, properties(props)...)
	}
	return n
}

func (b *builder) partitionID(i int) string {
	if i == entity.None {
		return ""
	}
	return b.set.Partitions.At(i).ID
}

func (b *builder) applicationID(i int) string {
	if i == entity.None {
		return ""
	}
	return b.set.Applications.At(i).ID
}

func (b *builder) applicationPartitionID(i int) string {
	if i == entity.None {
		return ""
	}
	return b.partitionID(b.set.Applications.At(i).Partition)
}

func (b *builder) partition(e *entity.Partition, a Action) actionbuf.Node {
	return withProperties(actionbuf.Node{Fields: []any{e.Key, e.ID, e.Name}}, a, e.Properties)
}

func (b *builder) partitionUser(e *entity.PartitionUser, _ Action) actionbuf.Node {
	return actionbuf.Leaf(e.Key, b.partitionID(e.Partition), e.Account)
}

func (b *builder) userInPartitionRole(e *entity.UserInPartitionRole, _ Action) actionbuf.Node {
	role := b.set.PartitionRoles.At(e.PartitionRole)
	return actionbuf.Leaf(e.Key, b.partitionID(role.Partition), role.Name, e.Account)
}

func (b *builder) application(e *entity.Application, a Action) actionbuf.Node {
	n := actionbuf.Node{Fields: []any{e.Key, b.partitionID(e.Partition), e.ID, e.Name}}
	return withProperties(n, a, e.Properties)
}

func (b *builder) applicationRole(e *entity.ApplicationRole, a Action) actionbuf.Node {
	n := actionbuf.Node{Fields: []any{e.Key, b.applicationID(e.Application), e.Name}}
	return withProperties(n, a, e.Properties)
}

func (b *builder) userInApplicationRole(e *entity.UserInApplicationRole, _ Action) actionbuf.Node {
	role := b.set.ApplicationRoles.At(e.ApplicationRole)
	return actionbuf.Leaf(e.Key, b.applicationID(role.Application), role.Name, e.Account)
}

func (b *builder) subscription(e *entity.Subscription, a Action) actionbuf.Node {
	asm := b.set.Assemblies.At(e.Assembly)
	clsid := ""
	if ref, ok := b.set.Component(e.Component); ok {
		clsid = b.set.Assemblies.At(ref.Assembly).Components[ref.Component].CLSID
	}
	n := actionbuf.Node{Fields: []any{
		e.Key, b.applicationID(asm.Application), clsid, e.ID, e.Name, e.EventCLSID, e.PublisherID,
	}}
	return withProperties(n, a, e.Properties)
}

func (b *builder) assemblyFields(e *entity.Assembly) []any {
	return []any{
		e.Key,
		b.applicationID(e.Application),
		b.applicationPartitionID(e.Application),
		e.DllPath,
		e.TlbPath,
		e.PSDllPath,
		int(e.Attributes),
	}
}

// assembly registers the full component tree on creation. Removal
// unregisters by path and carries no children.
func (b *builder) assembly(e *entity.Assembly, a Action) actionbuf.Node {
	n := actionbuf.Node{Fields: b.assemblyFields(e)}
	if a == Create {
		n.Children = b.components(e, b.restoredRole, true)
	}
	return n
}

// restoredRole reports whether a role assignment exists once its assembly
// has been created by the current buffer.
func (b *builder) restoredRole(i int) bool {
	st := &b.set.RoleAssignments.At(i).State
	if b.req.Direction == entity.DirectionInstall {
		return st.Installing()
	}
	return st.Present && !st.ObjectNotFound
}

func (b *builder) roles(idx []int, include func(int) bool) []actionbuf.Node {
	var out []actionbuf.Node
	for _, i := range idx {
		if !include(i) {
			continue
		}
		ra := b.set.RoleAssignments.At(i)
		name := ""
		if ra.ApplicationRole != entity.None {
			name = b.set.ApplicationRoles.At(ra.ApplicationRole).Name
		}
		out = append(out, actionbuf.Leaf(tagRole, ra.Key, name))
	}
	return out
}

// components renders the component tree of an assembly. With full set,
// every node is kept together with its properties; otherwise the tree is
// pruned down to the nodes that carry an included role.
func (b *builder) components(e *entity.Assembly, include func(int) bool, full bool) []actionbuf.Node {
	var out []actionbuf.Node
	for _, c := range e.Components {
		cn := actionbuf.Node{Fields: []any{tagComponent, c.Key, c.CLSID}}
		if full {
			cn.Children = append(cn.Children, properties(c.Properties)...)
		}
		cn.Children = append(cn.Children, b.roles(c.Roles, include)...)
		for _, itf := range c.Interfaces {
			in := actionbuf.Node{Fields: []any{tagInterface, itf.Key, itf.IID}}
			if full {
				in.Children = append(in.Children, properties(itf.Properties)...)
			}
			in.Children = append(in.Children, b.roles(itf.Roles, include)...)
			for _, m := range itf.Methods {
				mn := actionbuf.Node{Fields: []any{tagMethod, m.Key, m.Index, m.Name}}
				if full {
					mn.Children = append(mn.Children, properties(m.Properties)...)
				}
				mn.Children = append(mn.Children, b.roles(m.Roles, include)...)
				if full || len(mn.Children) > 0 {
					in.Children = append(in.Children, mn)
				}
			}
			if full || len(in.Children) > 0 {
				cn.Children = append(cn.Children, in)
			}
		}
		if full || len(cn.Children) > 0 {
			out = append(out, cn)
		}
	}
	return out
}

// assemblyChanged reports whether the current buffer creates or removes
// the assembly at index i.
func (b *builder) assemblyChanged(i int) bool {
	a := b.set.Assemblies.At(i)
	return b.eligible(&a.State, a.RunInCommit()) && b.action(&a.State) != NoOp
}

// roleAssignments writes the bookkeeping section: one item per assembly
// that stays registered but gains or loses role assignments.
func (b *builder) roleAssignments() {
	var items []actionbuf.Item
	d := b.req.Direction
	for ai, a := range b.set.Assemblies.Walk(b.reverse) {
		if b.assemblyChanged(ai) {
			continue
		}
		inCommit := a.RunInCommit()
		include := func(i int) bool {
			ra := b.set.RoleAssignments.At(i)
			if ra.Assembly != ai || !b.eligible(&ra.State, inCommit) {
				return false
			}
			// An install rollback leaves pre-existing assignments alone.
			return !(b.req.Phase == RollbackExecute && d == entity.DirectionInstall && ra.Present)
		}
		if !b.hasRoles(ai, inCommit) {
			continue
		}

		act := b.roleAction()
		children := b.components(a, include, false)
		if len(children) == 0 {
			act = NoOp
		}
		n := actionbuf.Node{
			Fields:   []any{a.Key, b.applicationID(a.Application), b.applicationPartitionID(a.Application)},
			Children: children,
		}
		b.add(entity.KindRoleAssignment, act, &items, n)
	}
	b.section(entity.KindRoleAssignment, items)
}

func (b *builder) hasRoles(ai int, inCommit bool) bool {
	for _, ra := range b.set.RoleAssignments.Forward() {
		if ra.Assembly == ai && b.eligible(&ra.State, inCommit) {
			return true
		}
	}
	return false
}

func (b *builder) roleAction() Action {
	install := b.req.Direction == entity.DirectionInstall
	if b.req.Phase == RollbackExecute {
		install = !install
	}
	if install {
		return Create
	}
	return Remove
}
