package entity

import (
	"github.com/vk/catalogplan/internal/config"
	"github.com/vk/catalogplan/internal/keypath"
)

// None marks an absent arena reference.
const None = -1

// Partition is a catalog partition.
type Partition struct {
	State
	ID         string
	Name       string
	Properties []config.Property
}

// PartitionRole is a role inside a partition. It is always a locater.
type PartitionRole struct {
	State
	Partition int
	ID        string
	Name      string
}

// PartitionUser sets the default partition of Account.
type PartitionUser struct {
	State
	Partition int
	Account   string
}

// UserInPartitionRole adds Account to a partition role.
type UserInPartitionRole struct {
	State
	PartitionRole int
	Account       string
}

// Application is a catalog application, optionally inside a partition.
type Application struct {
	State
	Partition  int
	ID         string
	Name       string
	Properties []config.Property
}

// ApplicationRole is a role defined by an application.
type ApplicationRole struct {
	State
	Application int
	ID          string
	Name        string
	Properties  []config.Property
}

// UserInApplicationRole adds Account to an application role.
type UserInApplicationRole struct {
	State
	ApplicationRole int
	Account         string
}

// Module groups assemblies. It is never installed itself.
type Module struct {
	State
}

// Attributes are the registration flags of an assembly.
type Attributes uint8

const (
	AttrEventClass Attributes = 1 << iota
	AttrDotNet
	AttrDllPathFromGAC
	AttrRunInCommit
)

// Has reports whether every bit of f is set.
func (a Attributes) Has(f Attributes) bool { return a&f == f }

// Assembly is the unit of registration. It owns the components it
// registers.
type Assembly struct {
	State
	Module      int
	Application int
	DllPath     string
	TlbPath     string
	PSDllPath   string
	Attributes  Attributes
	Components  []Component
}

// RunInCommit reports whether the assembly is registered in the commit
// phase instead of the deferred phase.
func (a *Assembly) RunInCommit() bool { return a.Attributes.Has(AttrRunInCommit) }

// Component is a class registered by an assembly.
type Component struct {
	Key        string
	CLSID      string
	Properties []config.Property
	Roles      []int
	Interfaces []Interface
}

// Interface is an interface of a component.
type Interface struct {
	Key        string
	IID        string
	Properties []config.Property
	Roles      []int
	Methods    []Method
}

// Method is a method of an interface. Index is None when only the name is
// known.
type Method struct {
	Key        string
	Index      int
	Name       string
	Properties []config.Property
	Roles      []int
}

// RoleAssignment grants an application role access to a component,
// interface or method of an assembly.
type RoleAssignment struct {
	State
	Assembly        int
	Target          keypath.Path
	ApplicationRole int
}

// Subscription is an event subscription of a component.
type Subscription struct {
	State
	Assembly    int
	Component   string
	ID          string
	Name        string
	EventCLSID  string
	PublisherID string
	Properties  []config.Property
}
