// Package schema holds the gohcl decoding targets of a catalog manifest.
package schema

import (
	"github.com/hashicorp/hcl/v2"
)

// File represents the top-level structure of a manifest file. Any block may
// appear in any file; the loader merges all files of a run.
type File struct {
	Units                   []*InstallUnit           `hcl:"install_unit,block"`
	Partitions              []*Partition             `hcl:"partition,block"`
	PartitionRoles          []*PartitionRole         `hcl:"partition_role,block"`
	PartitionUsers          []*PartitionUser         `hcl:"partition_user,block"`
	UsersInPartitionRoles   []*UserInPartitionRole   `hcl:"user_in_partition_role,block"`
	Applications            []*Application           `hcl:"application,block"`
	ApplicationRoles        []*ApplicationRole       `hcl:"application_role,block"`
	UsersInApplicationRoles []*UserInApplicationRole `hcl:"user_in_application_role,block"`
	Modules                 []*Module                `hcl:"module,block"`
	Assemblies              []*Assembly              `hcl:"assembly,block"`
	RoleAssignments         []*RoleAssignment        `hcl:"role_assignment,block"`
	Subscriptions           []*Subscription          `hcl:"subscription,block"`
	Remain                  hcl.Body                 `hcl:",remain"`
}

// InstallUnit represents an `install_unit` block.
type InstallUnit struct {
	Name         string `hcl:"name,label"`
	Architecture string `hcl:"architecture,optional"`
	Installed    bool   `hcl:"installed,optional"`
	Request      string `hcl:"request,optional"`
}

// --- Partitions ---

type Partition struct {
	Key        string         `hcl:"key,label"`
	Unit       string         `hcl:"unit,optional"`
	ID         string         `hcl:"id,optional"`
	Name       string         `hcl:"name,optional"`
	Properties hcl.Expression `hcl:"properties,optional"`
}

type PartitionRole struct {
	Key       string `hcl:"key,label"`
	Partition string `hcl:"partition"`
	Name      string `hcl:"name"`
}

type PartitionUser struct {
	Key       string `hcl:"key,label"`
	Unit      string `hcl:"unit"`
	Partition string `hcl:"partition"`
	Account   string `hcl:"account"`
}

type UserInPartitionRole struct {
	Key           string `hcl:"key,label"`
	Unit          string `hcl:"unit"`
	PartitionRole string `hcl:"partition_role"`
	Account       string `hcl:"account"`
}

// --- Applications ---

type Application struct {
	Key        string         `hcl:"key,label"`
	Unit       string         `hcl:"unit,optional"`
	Partition  string         `hcl:"partition,optional"`
	ID         string         `hcl:"id,optional"`
	Name       string         `hcl:"name,optional"`
	Properties hcl.Expression `hcl:"properties,optional"`
}

type ApplicationRole struct {
	Key         string         `hcl:"key,label"`
	Unit        string         `hcl:"unit,optional"`
	Application string         `hcl:"application"`
	Name        string         `hcl:"name"`
	Properties  hcl.Expression `hcl:"properties,optional"`
}

type UserInApplicationRole struct {
	Key             string `hcl:"key,label"`
	Unit            string `hcl:"unit"`
	ApplicationRole string `hcl:"application_role"`
	Account         string `hcl:"account"`
}

// --- Registration ---

// Module represents a `module` block. DependsOn lists other modules, either
// as strings or as bare names.
type Module struct {
	Key       string         `hcl:"key,label"`
	DependsOn hcl.Expression `hcl:"depends_on,optional"`
}

// Assembly represents an `assembly` block with its nested component tree.
type Assembly struct {
	Key            string         `hcl:"key,label"`
	Unit           string         `hcl:"unit"`
	Module         string         `hcl:"module,optional"`
	Application    string         `hcl:"application,optional"`
	DllPath        string         `hcl:"dll_path"`
	TlbPath        string         `hcl:"tlb_path,optional"`
	PSDllPath      string         `hcl:"ps_dll_path,optional"`
	EventClass     bool           `hcl:"event_class,optional"`
	DotNet         bool           `hcl:"dot_net,optional"`
	DllPathFromGAC bool           `hcl:"dll_path_from_gac,optional"`
	RunInCommit    bool           `hcl:"run_in_commit,optional"`
	DependsOn      hcl.Expression `hcl:"depends_on,optional"`
	Components     []*Component   `hcl:"component,block"`
}

type Component struct {
	Key        string         `hcl:"key,label"`
	CLSID      string         `hcl:"clsid"`
	Properties hcl.Expression `hcl:"properties,optional"`
	Interfaces []*Interface   `hcl:"interface,block"`
}

type Interface struct {
	Key        string         `hcl:"key,label"`
	IID        string         `hcl:"iid"`
	Properties hcl.Expression `hcl:"properties,optional"`
	Methods    []*Method      `hcl:"method,block"`
}

type Method struct {
	Key        string         `hcl:"key,label"`
	Index      *int           `hcl:"index,optional"`
	Name       string         `hcl:"name,optional"`
	Properties hcl.Expression `hcl:"properties,optional"`
}

// RoleAssignment represents a `role_assignment` block. Target is a key
// path, written as a string or as a bare traversal such as adder.iadd.sum.
type RoleAssignment struct {
	Key    string         `hcl:"key,label"`
	Unit   string         `hcl:"unit"`
	Role   string         `hcl:"role"`
	Target hcl.Expression `hcl:"target"`
}

type Subscription struct {
	Key         string         `hcl:"key,label"`
	Unit        string         `hcl:"unit"`
	Component   string         `hcl:"component"`
	ID          string         `hcl:"id,optional"`
	Name        string         `hcl:"name"`
	EventCLSID  string         `hcl:"event_clsid,optional"`
	PublisherID string         `hcl:"publisher_id,optional"`
	Properties  hcl.Expression `hcl:"properties,optional"`
}
