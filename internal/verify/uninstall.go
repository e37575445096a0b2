package verify

import (
	"context"
	"fmt"

	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/entity"
)

// Uninstall verifies the set for an uninstall pass. Missing objects are
// flagged, never reported.
func (v *Verifier) Uninstall(ctx context.Context, set *entity.Set) error {
	g := targets{set: set}
	missingPartition := func(i int) bool { return i != entity.None && set.Partitions.At(i).ObjectNotFound }
	missingApplication := func(i int) bool { return i != entity.None && set.Applications.At(i).ObjectNotFound }

	steps := []func() error{
		func() error {
			return uninstallList(ctx, v, &set.Partitions, g.partition,
				func(*entity.Partition) (bool, bool) { return false, false })
		},
		func() error {
			return uninstallList(ctx, v, &set.PartitionRoles, g.partitionRole,
				func(e *entity.PartitionRole) (bool, bool) { return missingPartition(e.Partition), false })
		},
		func() error {
			return uninstallList(ctx, v, &set.Applications, g.application,
				func(e *entity.Application) (bool, bool) { return missingPartition(e.Partition), false })
		},
		func() error {
			return uninstallList(ctx, v, &set.ApplicationRoles, g.applicationRole,
				func(e *entity.ApplicationRole) (bool, bool) { return missingApplication(e.Application), false })
		},
		func() error {
			return uninstallList(ctx, v, &set.Subscriptions, g.subscription,
				func(e *entity.Subscription) (bool, bool) {
					return missingApplication(set.Assemblies.At(e.Assembly).Application), set.InCommit(e.Assembly)
				})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("verifying catalog for uninstall: %w", err)
		}
	}
	cascade(set)

	all, _ := set.Totals(entity.DirectionUninstall)
	ctxlog.FromContext(ctx).Info("Catalog verified", "direction", entity.DirectionUninstall.String(), "transitions", all)
	return nil
}

func uninstallList[T any, P interface {
	*T
	entity.Stateful
}](ctx context.Context, v *Verifier, l *entity.List[T], build func(P) target, placement func(P) (parentMissing, inCommit bool)) error {
	log := ctxlog.FromContext(ctx)
	for _, e := range l.Forward() {
		p := P(e)
		st := p.Common()
		if !st.Uninstalling() && !st.Ref.Has(entity.DirectionUninstall) {
			continue
		}
		t := build(p)
		parentMissing, inCommit := placement(p)
		if !parentMissing {
			obj, found, err := v.lookup(ctx, &t)
			if err != nil {
				return err
			}
			if found {
				t.adopt(obj.ID)
				continue
			}
		}
		log.Debug("Catalog object already gone", "kind", l.Kind.String(), "key", st.Key)
		markMissing(st, &l.Counts, inCommit)
	}
	return nil
}

func markMissing(st *entity.State, c *entity.Counts, inCommit bool) {
	st.ObjectNotFound = true
	if !st.Uninstalling() {
		return
	}
	c.Uninstall--
	if inCommit {
		c.CommitUninstall--
	}
}

// cascade flags memberships and role assignments whose role or partition
// is gone.
func cascade(set *entity.Set) {
	for _, e := range set.PartitionUsers.Forward() {
		if e.Partition != entity.None && set.Partitions.At(e.Partition).ObjectNotFound {
			markMissing(&e.State, &set.PartitionUsers.Counts, false)
		}
	}
	for _, e := range set.UsersInPartitionRoles.Forward() {
		if set.PartitionRoles.At(e.PartitionRole).ObjectNotFound {
			markMissing(&e.State, &set.UsersInPartitionRoles.Counts, false)
		}
	}
	for _, e := range set.UsersInApplicationRoles.Forward() {
		if set.ApplicationRoles.At(e.ApplicationRole).ObjectNotFound {
			markMissing(&e.State, &set.UsersInApplicationRoles.Counts, false)
		}
	}
	for _, e := range set.RoleAssignments.Forward() {
		if e.ApplicationRole != entity.None && set.ApplicationRoles.At(e.ApplicationRole).ObjectNotFound {
			markMissing(&e.State, &set.RoleAssignments.Counts, set.InCommit(e.Assembly))
		}
	}
}
