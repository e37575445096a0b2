package entity

// Edge is a dependency declaration: From requires To.
type Edge struct {
	From string
	To   string
}

// ComponentRef locates a component inside the assembly arena.
type ComponentRef struct {
	Assembly  int
	Component int
}

// Set is every entity of one scheduling pass.
type Set struct {
	Partitions              List[Partition]
	PartitionRoles          List[PartitionRole]
	PartitionUsers          List[PartitionUser]
	UsersInPartitionRoles   List[UserInPartitionRole]
	Applications            List[Application]
	ApplicationRoles        List[ApplicationRole]
	UsersInApplicationRoles List[UserInApplicationRole]
	Modules                 List[Module]
	Assemblies              List[Assembly]
	RoleAssignments         List[RoleAssignment]
	Subscriptions           List[Subscription]

	ModuleEdges   []Edge
	AssemblyEdges []Edge

	components map[string]ComponentRef
}

// NewSet returns an empty set with every list tagged by its kind.
func NewSet() *Set {
	s := &Set{components: make(map[string]ComponentRef)}
	s.Partitions.Kind = KindPartition
	s.PartitionRoles.Kind = KindPartitionRole
	s.PartitionUsers.Kind = KindPartitionUser
	s.UsersInPartitionRoles.Kind = KindUserInPartitionRole
	s.Applications.Kind = KindApplication
	s.ApplicationRoles.Kind = KindApplicationRole
	s.UsersInApplicationRoles.Kind = KindUserInApplicationRole
	s.Modules.Kind = KindModule
	s.Assemblies.Kind = KindAssembly
	s.RoleAssignments.Kind = KindRoleAssignment
	s.Subscriptions.Kind = KindSubscription
	return s
}

// Component returns the location of a component by its key.
func (s *Set) Component(key string) (ComponentRef, bool) {
	ref, ok := s.components[key]
	return ref, ok
}

// CountsOf returns the counters of the list holding kind k.
func (s *Set) CountsOf(k Kind) *Counts {
	switch k {
	case KindPartition:
		return &s.Partitions.Counts
	case KindPartitionRole:
		return &s.PartitionRoles.Counts
	case KindPartitionUser:
		return &s.PartitionUsers.Counts
	case KindUserInPartitionRole:
		return &s.UsersInPartitionRoles.Counts
	case KindApplication:
		return &s.Applications.Counts
	case KindApplicationRole:
		return &s.ApplicationRoles.Counts
	case KindUserInApplicationRole:
		return &s.UsersInApplicationRoles.Counts
	case KindModule:
		return &s.Modules.Counts
	case KindAssembly:
		return &s.Assemblies.Counts
	case KindRoleAssignment:
		return &s.RoleAssignments.Counts
	case KindSubscription:
		return &s.Subscriptions.Counts
	}
	return nil
}

// ScheduledKinds are the kinds that produce actions, in install order.
var ScheduledKinds = []Kind{
	KindPartition,
	KindPartitionUser,
	KindUserInPartitionRole,
	KindApplication,
	KindApplicationRole,
	KindUserInApplicationRole,
	KindAssembly,
	KindRoleAssignment,
	KindSubscription,
}

// Totals sums the counters of every scheduled list for direction d. all
// counts every transition, commit the ones that run in the commit phase.
func (s *Set) Totals(d Direction) (all, commit int) {
	for _, k := range ScheduledKinds {
		c := s.CountsOf(k)
		all += c.Of(d)
		commit += c.CommitOf(d)
	}
	return all, commit
}

// InCommit reports whether the assembly at arena index i runs in the
// commit phase.
func (s *Set) InCommit(i int) bool {
	return i != None && s.Assemblies.At(i).RunInCommit()
}
