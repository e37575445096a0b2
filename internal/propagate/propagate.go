// Package propagate marks every entity that is referenced by an entity being
// installed or removed, and fills the per-list counters of the set.
package propagate

import (
	"context"

	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/entity"
)

type target struct {
	kind entity.Kind
	idx  int
}

type referral struct {
	from target
	to   target
	dir  entity.Direction
}

type propagator struct {
	set  *entity.Set
	seen map[referral]struct{}
}

// Run propagates reference states for both directions. It never fails.
func Run(ctx context.Context, set *entity.Set) {
	p := &propagator{set: set, seen: make(map[referral]struct{})}
	for _, d := range []entity.Direction{entity.DirectionInstall, entity.DirectionUninstall} {
		p.direction(d)
	}
	p.bookkeeping()

	for _, d := range []entity.Direction{entity.DirectionInstall, entity.DirectionUninstall} {
		all, commit := set.Totals(d)
		ctxlog.FromContext(ctx).Debug("References propagated",
			"direction", d.String(), "transitions", all, "commit", commit)
	}
}

func (p *propagator) direction(d entity.Direction) {
	s := p.set

	for i, e := range s.PartitionUsers.Forward() {
		if count(&s.PartitionUsers.Counts, &e.State, d, false) {
			p.partition(target{entity.KindPartitionUser, i}, e.Partition, d)
		}
	}
	for i, e := range s.UsersInPartitionRoles.Forward() {
		if count(&s.UsersInPartitionRoles.Counts, &e.State, d, false) {
			from := target{entity.KindUserInPartitionRole, i}
			pr := s.PartitionRoles.At(e.PartitionRole)
			p.mark(from, target{entity.KindPartitionRole, e.PartitionRole}, &pr.State, d)
			p.partition(from, pr.Partition, d)
		}
	}
	for _, e := range s.Partitions.Forward() {
		count(&s.Partitions.Counts, &e.State, d, false)
	}
	for i, e := range s.Applications.Forward() {
		if count(&s.Applications.Counts, &e.State, d, false) {
			p.partition(target{entity.KindApplication, i}, e.Partition, d)
		}
	}
	for i, e := range s.ApplicationRoles.Forward() {
		if count(&s.ApplicationRoles.Counts, &e.State, d, false) {
			p.applicationRole(target{entity.KindApplicationRole, i}, i, d, false)
		}
	}
	for i, e := range s.UsersInApplicationRoles.Forward() {
		if count(&s.UsersInApplicationRoles.Counts, &e.State, d, false) {
			p.applicationRole(target{entity.KindUserInApplicationRole, i}, e.ApplicationRole, d, true)
		}
	}
	for i, e := range s.Assemblies.Forward() {
		if count(&s.Assemblies.Counts, &e.State, d, e.RunInCommit()) {
			p.application(target{entity.KindAssembly, i}, e.Application, d)
		}
	}
	for i, e := range s.RoleAssignments.Forward() {
		if count(&s.RoleAssignments.Counts, &e.State, d, s.InCommit(e.Assembly)) {
			from := target{entity.KindRoleAssignment, i}
			p.applicationRole(from, e.ApplicationRole, d, true)
			asm := s.Assemblies.At(e.Assembly)
			p.mark(from, target{entity.KindAssembly, e.Assembly}, &asm.State, d)
		}
	}
	for i, e := range s.Subscriptions.Forward() {
		if count(&s.Subscriptions.Counts, &e.State, d, s.InCommit(e.Assembly)) {
			from := target{entity.KindSubscription, i}
			asm := s.Assemblies.At(e.Assembly)
			p.mark(from, target{entity.KindAssembly, e.Assembly}, &asm.State, d)
			p.application(from, asm.Application, d)
		}
	}
}

// count adds a transitioning entity to its list totals and reports whether
// it transitions in d.
func count(c *entity.Counts, st *entity.State, d entity.Direction, inCommit bool) bool {
	if !st.Transitioning(d) {
		return false
	}
	if d == entity.DirectionUninstall {
		c.Uninstall++
		if inCommit {
			c.CommitUninstall++
		}
	} else {
		c.Install++
		if inCommit {
			c.Commit++
		}
	}
	return true
}

func (p *propagator) mark(from, to target, st *entity.State, d entity.Direction) {
	key := referral{from: from, to: to, dir: d}
	if _, dup := p.seen[key]; dup {
		return
	}
	p.seen[key] = struct{}{}
	st.Reference(from.kind, d)
}

func (p *propagator) partition(from target, idx int, d entity.Direction) {
	if idx == entity.None {
		return
	}
	p.mark(from, target{entity.KindPartition, idx}, &p.set.Partitions.At(idx).State, d)
}

func (p *propagator) application(from target, idx int, d entity.Direction) {
	if idx == entity.None {
		return
	}
	app := p.set.Applications.At(idx)
	p.mark(from, target{entity.KindApplication, idx}, &app.State, d)
	p.partition(from, app.Partition, d)
}

// applicationRole marks the role itself only when self is set; a
// transitioning role passes its reference on to its application.
func (p *propagator) applicationRole(from target, idx int, d entity.Direction, self bool) {
	role := p.set.ApplicationRoles.At(idx)
	if self {
		p.mark(from, target{entity.KindApplicationRole, idx}, &role.State, d)
	}
	p.application(from, role.Application, d)
}

// bookkeeping counts the assemblies that are not transitioning themselves
// but carry role assignments that are.
func (p *propagator) bookkeeping() {
	s := p.set
	for _, a := range s.Assemblies.Forward() {
		if a.RefCount(entity.KindRoleAssignment, entity.DirectionInstall) > 0 && !a.Installing() {
			s.Assemblies.Counts.RoleInstall++
		}
		if a.RefCount(entity.KindRoleAssignment, entity.DirectionUninstall) > 0 && !a.Uninstalling() {
			s.Assemblies.Counts.RoleUninstall++
		}
	}
}
