package config

// Model is the unified, format-agnostic representation of every declared
// catalog resource. Slices keep declaration order, which the scheduler
// relies on for deterministic output.
type Model struct {
	Units                   []*InstallUnit
	Partitions              []*Partition
	PartitionRoles          []*PartitionRole
	PartitionUsers          []*PartitionUser
	UsersInPartitionRoles   []*UserInPartitionRole
	Applications            []*Application
	ApplicationRoles        []*ApplicationRole
	UsersInApplicationRoles []*UserInApplicationRole
	Modules                 []*Module
	Assemblies              []*Assembly
	RoleAssignments         []*RoleAssignment
	Subscriptions           []*Subscription
}

// Merge appends every record of other to m.
func (m *Model) Merge(other *Model) {
	m.Units = append(m.Units, other.Units...)
	m.Partitions = append(m.Partitions, other.Partitions...)
	m.PartitionRoles = append(m.PartitionRoles, other.PartitionRoles...)
	m.PartitionUsers = append(m.PartitionUsers, other.PartitionUsers...)
	m.UsersInPartitionRoles = append(m.UsersInPartitionRoles, other.UsersInPartitionRoles...)
	m.Applications = append(m.Applications, other.Applications...)
	m.ApplicationRoles = append(m.ApplicationRoles, other.ApplicationRoles...)
	m.UsersInApplicationRoles = append(m.UsersInApplicationRoles, other.UsersInApplicationRoles...)
	m.Modules = append(m.Modules, other.Modules...)
	m.Assemblies = append(m.Assemblies, other.Assemblies...)
	m.RoleAssignments = append(m.RoleAssignments, other.RoleAssignments...)
	m.Subscriptions = append(m.Subscriptions, other.Subscriptions...)
}

// Property is a single named catalog property value.
type Property struct {
	Name  string `validate:"required"`
	Value string
}

// InstallUnit is the installer-side unit of installation that owns a set of
// catalog resources. Its current and requested state decide whether the
// resources it owns are installed, removed or left alone.
type InstallUnit struct {
	Name         string `validate:"required"`
	Architecture string `validate:"omitempty,oneof=x86 x64 arm64 neutral"`
	Installed    bool
	Request      string `validate:"omitempty,oneof=none install remove"`
}

// Partition is the format-agnostic representation of a `partition` block.
type Partition struct {
	Key        string `validate:"required"`
	Unit       string
	ID         string
	Name       string `validate:"required_without=ID"`
	Properties []Property `validate:"dive"`
}

// PartitionRole is a role that already exists inside a partition. It is
// only ever located, never created.
type PartitionRole struct {
	Key       string `validate:"required"`
	Partition string `validate:"required"`
	Name      string `validate:"required"`
}

// PartitionUser sets the default partition of an account.
type PartitionUser struct {
	Key       string `validate:"required"`
	Unit      string `validate:"required"`
	Partition string `validate:"required"`
	Account   string `validate:"required"`
}

// UserInPartitionRole adds an account to a partition role.
type UserInPartitionRole struct {
	Key           string `validate:"required"`
	Unit          string `validate:"required"`
	PartitionRole string `validate:"required"`
	Account       string `validate:"required"`
}

// Application is the format-agnostic representation of an `application` block.
type Application struct {
	Key        string `validate:"required"`
	Unit       string
	Partition  string
	ID         string
	Name       string `validate:"required_without=ID"`
	Properties []Property `validate:"dive"`
}

// ApplicationRole is the format-agnostic representation of an
// `application_role` block.
type ApplicationRole struct {
	Key         string `validate:"required"`
	Unit        string
	Application string `validate:"required"`
	Name        string `validate:"required"`
	Properties  []Property `validate:"dive"`
}

// UserInApplicationRole adds an account to an application role.
type UserInApplicationRole struct {
	Key             string `validate:"required"`
	Unit            string `validate:"required"`
	ApplicationRole string `validate:"required"`
	Account         string `validate:"required"`
}

// Module is a named grouping unit for assemblies.
type Module struct {
	Key       string `validate:"required"`
	DependsOn []string
}

// Assembly is the format-agnostic representation of an `assembly` block.
type Assembly struct {
	Key            string `validate:"required"`
	Unit           string `validate:"required"`
	Module         string
	Application    string
	DllPath        string `validate:"required"`
	TlbPath        string
	PSDllPath      string
	EventClass     bool
	DotNet         bool
	DllPathFromGAC bool
	RunInCommit    bool
	DependsOn      []string
	Components     []*Component `validate:"dive"`
}

// Component is a COM class registered by an assembly.
type Component struct {
	Key        string `validate:"required"`
	CLSID      string `validate:"required"`
	Properties []Property   `validate:"dive"`
	Interfaces []*Interface `validate:"dive"`
}

// Interface is an interface implemented by a component.
type Interface struct {
	Key        string `validate:"required"`
	IID        string `validate:"required"`
	Properties []Property `validate:"dive"`
	Methods    []*Method  `validate:"dive"`
}

// Method is a method of an interface, addressed by index, by name or both.
type Method struct {
	Key        string `validate:"required"`
	Index      *int
	Name       string `validate:"required_without=Index"`
	Properties []Property `validate:"dive"`
}

// RoleAssignment grants an application role access to a component,
// interface or method. Target is a key path (`component[.interface[.method]]`).
type RoleAssignment struct {
	Key    string `validate:"required"`
	Unit   string `validate:"required"`
	Role   string `validate:"required"`
	Target string `validate:"required"`
}

// Subscription is an event subscription for a component.
type Subscription struct {
	Key         string `validate:"required"`
	Unit        string `validate:"required"`
	Component   string `validate:"required"`
	ID          string
	Name        string `validate:"required"`
	EventCLSID  string
	PublisherID string
	Properties  []Property `validate:"dive"`
}
