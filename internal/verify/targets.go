package verify

import (
	"github.com/vk/catalogplan/internal/catalog"
	"github.com/vk/catalogplan/internal/entity"
)

// targets builds the verifier view of each verified kind. Containers are
// computed when the target is built, so parents must already carry their
// identifiers.
type targets struct {
	set *entity.Set
}

func (g targets) partitionID(i int) string {
	if i == entity.None {
		return ""
	}
	return g.set.Partitions.At(i).ID
}

func (g targets) applicationID(i int) string {
	if i == entity.None {
		return ""
	}
	return g.set.Applications.At(i).ID
}

func (g targets) partition(e *entity.Partition) target {
	return target{
		kind:      entity.KindPartition,
		state:     &e.State,
		container: catalog.Container{Collection: catalog.Partitions},
		id:        &e.ID,
		name:      e.Name,
	}
}

func (g targets) partitionRole(e *entity.PartitionRole) target {
	return target{
		kind:      entity.KindPartitionRole,
		state:     &e.State,
		container: catalog.Container{Collection: catalog.PartitionRoles, Parent: g.partitionID(e.Partition)},
		id:        &e.ID,
		name:      e.Name,
		byName:    true,
	}
}

func (g targets) application(e *entity.Application) target {
	return target{
		kind:      entity.KindApplication,
		state:     &e.State,
		container: catalog.Container{Collection: catalog.Applications, Parent: g.partitionID(e.Partition)},
		id:        &e.ID,
		name:      e.Name,
	}
}

func (g targets) applicationRole(e *entity.ApplicationRole) target {
	return target{
		kind:      entity.KindApplicationRole,
		state:     &e.State,
		container: catalog.Container{Collection: catalog.ApplicationRoles, Parent: g.applicationID(e.Application)},
		id:        &e.ID,
		name:      e.Name,
		byName:    true,
	}
}

func (g targets) subscription(e *entity.Subscription) target {
	parent := ""
	if ref, ok := g.set.Component(e.Component); ok {
		parent = g.set.Assemblies.At(ref.Assembly).Components[ref.Component].CLSID
	}
	return target{
		kind:      entity.KindSubscription,
		state:     &e.State,
		container: catalog.Container{Collection: catalog.Subscriptions, Parent: parent},
		id:        &e.ID,
		name:      e.Name,
	}
}
