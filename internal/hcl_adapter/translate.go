// This file translates the HCL schema structs into the format-agnostic
// configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/vk/catalogplan/internal/bggohcl"
	"github.com/vk/catalogplan/internal/config"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/schema"
)

func translate(ctx context.Context, f *schema.File) (*config.Model, error) {
	m := &config.Model{}

	for _, u := range f.Units {
		m.Units = append(m.Units, &config.InstallUnit{
			Name:         u.Name,
			Architecture: u.Architecture,
			Installed:    u.Installed,
			Request:      u.Request,
		})
	}
	for _, p := range f.Partitions {
		props, err := properties(ctx, p.Properties, "partition '"+p.Key+"'")
		if err != nil {
			return nil, err
		}
		m.Partitions = append(m.Partitions, &config.Partition{
			Key: p.Key, Unit: p.Unit, ID: p.ID, Name: p.Name, Properties: props,
		})
	}
	for _, r := range f.PartitionRoles {
		m.PartitionRoles = append(m.PartitionRoles, &config.PartitionRole{Key: r.Key, Partition: r.Partition, Name: r.Name})
	}
	for _, u := range f.PartitionUsers {
		m.PartitionUsers = append(m.PartitionUsers, &config.PartitionUser{
			Key: u.Key, Unit: u.Unit, Partition: u.Partition, Account: u.Account,
		})
	}
	for _, u := range f.UsersInPartitionRoles {
		m.UsersInPartitionRoles = append(m.UsersInPartitionRoles, &config.UserInPartitionRole{
			Key: u.Key, Unit: u.Unit, PartitionRole: u.PartitionRole, Account: u.Account,
		})
	}
	for _, a := range f.Applications {
		props, err := properties(ctx, a.Properties, "application '"+a.Key+"'")
		if err != nil {
			return nil, err
		}
		m.Applications = append(m.Applications, &config.Application{
			Key: a.Key, Unit: a.Unit, Partition: a.Partition, ID: a.ID, Name: a.Name, Properties: props,
		})
	}
	for _, r := range f.ApplicationRoles {
		props, err := properties(ctx, r.Properties, "application_role '"+r.Key+"'")
		if err != nil {
			return nil, err
		}
		m.ApplicationRoles = append(m.ApplicationRoles, &config.ApplicationRole{
			Key: r.Key, Unit: r.Unit, Application: r.Application, Name: r.Name, Properties: props,
		})
	}
	for _, u := range f.UsersInApplicationRoles {
		m.UsersInApplicationRoles = append(m.UsersInApplicationRoles, &config.UserInApplicationRole{
			Key: u.Key, Unit: u.Unit, ApplicationRole: u.ApplicationRole, Account: u.Account,
		})
	}
	for _, mod := range f.Modules {
		deps, diags := bggohcl.References(mod.DependsOn)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid depends_on of module '%s': %w", mod.Key, diags)
		}
		m.Modules = append(m.Modules, &config.Module{Key: mod.Key, DependsOn: deps})
	}
	for _, a := range f.Assemblies {
		asm, err := translateAssembly(ctx, a)
		if err != nil {
			return nil, err
		}
		m.Assemblies = append(m.Assemblies, asm)
	}
	for _, r := range f.RoleAssignments {
		target, diags := bggohcl.Reference(r.Target)
		if diags.HasErrors() {
			return nil, fmt.Errorf("invalid target of role_assignment '%s': %w", r.Key, diags)
		}
		m.RoleAssignments = append(m.RoleAssignments, &config.RoleAssignment{
			Key: r.Key, Unit: r.Unit, Role: r.Role, Target: target,
		})
	}
	for _, s := range f.Subscriptions {
		props, err := properties(ctx, s.Properties, "subscription '"+s.Key+"'")
		if err != nil {
			return nil, err
		}
		m.Subscriptions = append(m.Subscriptions, &config.Subscription{
			Key:         s.Key,
			Unit:        s.Unit,
			Component:   s.Component,
			ID:          s.ID,
			Name:        s.Name,
			EventCLSID:  s.EventCLSID,
			PublisherID: s.PublisherID,
			Properties:  props,
		})
	}
	return m, nil
}

// translateAssembly converts an assembly block and its component tree.
func translateAssembly(ctx context.Context, a *schema.Assembly) (*config.Assembly, error) {
	logger := ctxlog.FromContext(ctx).With("assembly", a.Key)
	ctx = ctxlog.WithLogger(ctx, logger)

	deps, diags := bggohcl.References(a.DependsOn)
	if diags.HasErrors() {
		return nil, fmt.Errorf("invalid depends_on of assembly '%s': %w", a.Key, diags)
	}
	out := &config.Assembly{
		Key:            a.Key,
		Unit:           a.Unit,
		Module:         a.Module,
		Application:    a.Application,
		DllPath:        a.DllPath,
		TlbPath:        a.TlbPath,
		PSDllPath:      a.PSDllPath,
		EventClass:     a.EventClass,
		DotNet:         a.DotNet,
		DllPathFromGAC: a.DllPathFromGAC,
		RunInCommit:    a.RunInCommit,
		DependsOn:      deps,
	}

	for _, c := range a.Components {
		props, err := properties(ctx, c.Properties, "component '"+c.Key+"'")
		if err != nil {
			return nil, err
		}
		comp := &config.Component{Key: c.Key, CLSID: c.CLSID, Properties: props}
		for _, i := range c.Interfaces {
			props, err := properties(ctx, i.Properties, "interface '"+c.Key+"."+i.Key+"'")
			if err != nil {
				return nil, err
			}
			iface := &config.Interface{Key: i.Key, IID: i.IID, Properties: props}
			for _, mt := range i.Methods {
				props, err := properties(ctx, mt.Properties, "method '"+c.Key+"."+i.Key+"."+mt.Key+"'")
				if err != nil {
					return nil, err
				}
				iface.Methods = append(iface.Methods, &config.Method{
					Key: mt.Key, Index: mt.Index, Name: mt.Name, Properties: props,
				})
			}
			comp.Interfaces = append(comp.Interfaces, iface)
		}
		out.Components = append(out.Components, comp)
	}

	logger.Debug("Translated assembly.", "components", len(out.Components), "depends_on", len(deps))
	return out, nil
}
