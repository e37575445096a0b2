package verify

import (
	"context"
	"fmt"

	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/entity"
)

// Install verifies the set for an install pass.
func (v *Verifier) Install(ctx context.Context, set *entity.Set) error {
	g := targets{set: set}
	steps := []func() error{
		func() error { return installList(ctx, v, &set.Partitions, g.partition) },
		func() error { return installList(ctx, v, &set.PartitionRoles, g.partitionRole) },
		func() error { return installList(ctx, v, &set.Applications, g.application) },
		func() error { return installList(ctx, v, &set.ApplicationRoles, g.applicationRole) },
		func() error { return installList(ctx, v, &set.Subscriptions, g.subscription) },
		func() error { return requireInstalled(&set.Assemblies) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("verifying catalog for install: %w", err)
		}
	}
	ctxlog.FromContext(ctx).Info("Catalog verified", "direction", entity.DirectionInstall.String())
	return nil
}

func installList[T any, P interface {
	*T
	entity.Stateful
}](ctx context.Context, v *Verifier, l *entity.List[T], build func(P) target) error {
	for _, e := range l.Forward() {
		t := build(P(e))
		if err := v.install(ctx, &t); err != nil {
			return err
		}
	}
	return nil
}

func (v *Verifier) install(ctx context.Context, t *target) error {
	st := t.state
	switch {
	case st.Installing():
		return v.create(ctx, t)
	case !st.HasLocal() || st.WillBePresent():
		if !st.Ref.Has(entity.DirectionInstall) {
			ctxlog.FromContext(ctx).Debug("Unreferenced entity not verified", "kind", t.kind.String(), "key", st.Key)
			return nil
		}
		return v.require(ctx, t)
	case st.Ref.Has(entity.DirectionInstall):
		return &ReferencedNotInstalledError{Kind: t.kind, Key: st.Key}
	}
	return nil
}

// requireInstalled checks entities that are never looked up in the
// catalog but may still be required by installing entities.
func requireInstalled[T any, P interface {
	*T
	entity.Stateful
}](l *entity.List[T]) error {
	for _, e := range l.Forward() {
		st := P(e).Common()
		if st.HasLocal() && st.Ref.Has(entity.DirectionInstall) && !st.WillBePresent() {
			return &ReferencedNotInstalledError{Kind: l.Kind, Key: st.Key}
		}
	}
	return nil
}
