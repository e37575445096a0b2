package entity

import (
	"context"
	"fmt"

	"github.com/vk/catalogplan/internal/config"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/keypath"
)

type reader struct {
	src        Source
	set        *Set
	units      map[string]*config.InstallUnit
	skipped    map[Kind]map[string]struct{}
	skippedCmp map[string]struct{}
}

// Read allocates the entity set of one pass from src. Records of units built
// for a foreign architecture are skipped together with everything that hangs
// off them.
func Read(ctx context.Context, src Source) (*Set, error) {
	logger := ctxlog.FromContext(ctx)
	m := src.Model()

	r := &reader{
		src:        src,
		set:        NewSet(),
		units:      make(map[string]*config.InstallUnit, len(m.Units)),
		skipped:    make(map[Kind]map[string]struct{}),
		skippedCmp: make(map[string]struct{}),
	}
	for _, u := range m.Units {
		if _, dup := r.units[u.Name]; dup {
			return nil, fmt.Errorf("duplicate install_unit '%s'", u.Name)
		}
		r.units[u.Name] = u
	}

	steps := []func(*config.Model) error{
		r.readPartitions,
		r.readPartitionRoles,
		r.readPartitionUsers,
		r.readUsersInPartitionRoles,
		r.readApplications,
		r.readApplicationRoles,
		r.readUsersInApplicationRoles,
		r.readModules,
		r.readAssemblies,
		r.readRoleAssignments,
		r.readSubscriptions,
		r.readEdges,
	}
	for _, step := range steps {
		if err := step(m); err != nil {
			return nil, err
		}
	}

	skipped := 0
	for _, keys := range r.skipped {
		skipped += len(keys)
	}
	logger.Debug("Entity set allocated",
		"partitions", r.set.Partitions.Len(),
		"applications", r.set.Applications.Len(),
		"modules", r.set.Modules.Len(),
		"assemblies", r.set.Assemblies.Len(),
		"role_assignments", r.set.RoleAssignments.Len(),
		"subscriptions", r.set.Subscriptions.Len(),
		"skipped", skipped,
	)
	return r.set, nil
}

// state builds the common state of a record. keep is false when the record
// belongs to a foreign architecture.
func (r *reader) state(kind Kind, key, unit string) (State, bool, error) {
	s := State{Key: key, Unit: unit}
	if unit == "" {
		return s, true, nil
	}
	u, ok := r.units[unit]
	if !ok {
		return s, false, &ReferenceError{Kind: kind, Key: key, Field: "install_unit", Ref: unit}
	}
	if !r.src.ArchitectureMatches(unit) {
		r.skip(kind, key)
		return s, false, nil
	}
	req, ok := ParseRequest(u.Request)
	if !ok {
		return s, false, fmt.Errorf("install_unit '%s' has invalid request '%s'", unit, u.Request)
	}
	s.Present = u.Installed
	s.Request = req
	return s, true, nil
}

func (r *reader) skip(kind Kind, key string) {
	if r.skipped[kind] == nil {
		r.skipped[kind] = make(map[string]struct{})
	}
	r.skipped[kind][key] = struct{}{}
}

func (r *reader) isSkipped(kind Kind, key string) bool {
	_, ok := r.skipped[kind][key]
	return ok
}

// parent resolves a reference from a record of kind `from` to an entity of
// list l. skip is set when the parent was itself skipped.
func parent[T any](r *reader, l *List[T], from Kind, key, ref string, optional bool) (idx int, skip bool, err error) {
	if ref == "" && optional {
		return None, false, nil
	}
	if i, ok := l.Lookup(ref); ok {
		return i, false, nil
	}
	if r.isSkipped(l.Kind, ref) {
		r.skip(from, key)
		return None, true, nil
	}
	return None, false, &ReferenceError{Kind: from, Key: key, Field: l.Kind.String(), Ref: ref}
}

func add[T any](l *List[T], key string, item T) error {
	_, err := l.Add(key, item)
	return err
}

func (r *reader) readPartitions(m *config.Model) error {
	for _, rec := range m.Partitions {
		st, keep, err := r.state(KindPartition, rec.Key, rec.Unit)
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		if err := add(&r.set.Partitions, rec.Key, Partition{
			State: st, ID: rec.ID, Name: rec.Name, Properties: rec.Properties,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readPartitionRoles(m *config.Model) error {
	for _, rec := range m.PartitionRoles {
		p, skip, err := parent(r, &r.set.Partitions, KindPartitionRole, rec.Key, rec.Partition, false)
		if err != nil {
			return err
		}
		if skip {
			continue
		}
		if err := add(&r.set.PartitionRoles, rec.Key, PartitionRole{
			State: State{Key: rec.Key}, Partition: p, Name: rec.Name,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readPartitionUsers(m *config.Model) error {
	for _, rec := range m.PartitionUsers {
		st, keep, err := r.state(KindPartitionUser, rec.Key, rec.Unit)
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		p, skip, err := parent(r, &r.set.Partitions, KindPartitionUser, rec.Key, rec.Partition, false)
		if err != nil {
			return err
		}
		if skip {
			continue
		}
		if err := add(&r.set.PartitionUsers, rec.Key, PartitionUser{
			State: st, Partition: p, Account: rec.Account,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readUsersInPartitionRoles(m *config.Model) error {
	for _, rec := range m.UsersInPartitionRoles {
		st, keep, err := r.state(KindUserInPartitionRole, rec.Key, rec.Unit)
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		pr, skip, err := parent(r, &r.set.PartitionRoles, KindUserInPartitionRole, rec.Key, rec.PartitionRole, false)
		if err != nil {
			return err
		}
		if skip {
			continue
		}
		if err := add(&r.set.UsersInPartitionRoles, rec.Key, UserInPartitionRole{
			State: st, PartitionRole: pr, Account: rec.Account,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readApplications(m *config.Model) error {
	for _, rec := range m.Applications {
		st, keep, err := r.state(KindApplication, rec.Key, rec.Unit)
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		p, skip, err := parent(r, &r.set.Partitions, KindApplication, rec.Key, rec.Partition, true)
		if err != nil {
			return err
		}
		if skip {
			continue
		}
		if err := add(&r.set.Applications, rec.Key, Application{
			State: st, Partition: p, ID: rec.ID, Name: rec.Name, Properties: rec.Properties,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readApplicationRoles(m *config.Model) error {
	for _, rec := range m.ApplicationRoles {
		st, keep, err := r.state(KindApplicationRole, rec.Key, rec.Unit)
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		a, skip, err := parent(r, &r.set.Applications, KindApplicationRole, rec.Key, rec.Application, false)
		if err != nil {
			return err
		}
		if skip {
			continue
		}
		if err := add(&r.set.ApplicationRoles, rec.Key, ApplicationRole{
			State: st, Application: a, Name: rec.Name, Properties: rec.Properties,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readUsersInApplicationRoles(m *config.Model) error {
	for _, rec := range m.UsersInApplicationRoles {
		st, keep, err := r.state(KindUserInApplicationRole, rec.Key, rec.Unit)
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		ar, skip, err := parent(r, &r.set.ApplicationRoles, KindUserInApplicationRole, rec.Key, rec.ApplicationRole, false)
		if err != nil {
			return err
		}
		if skip {
			continue
		}
		if err := add(&r.set.UsersInApplicationRoles, rec.Key, UserInApplicationRole{
			State: st, ApplicationRole: ar, Account: rec.Account,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readModules(m *config.Model) error {
	for _, rec := range m.Modules {
		if err := add(&r.set.Modules, rec.Key, Module{State: State{Key: rec.Key}}); err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) readAssemblies(m *config.Model) error {
	for _, rec := range m.Assemblies {
		st, keep, err := r.state(KindAssembly, rec.Key, rec.Unit)
		if err != nil {
			return err
		}
		if !keep {
			r.skipComponents(rec)
			continue
		}
		mod, _, err := parent(r, &r.set.Modules, KindAssembly, rec.Key, rec.Module, true)
		if err != nil {
			return err
		}
		app, skip, err := parent(r, &r.set.Applications, KindAssembly, rec.Key, rec.Application, true)
		if err != nil {
			return err
		}
		if skip {
			r.skipComponents(rec)
			continue
		}

		asm := Assembly{
			State:       st,
			Module:      mod,
			Application: app,
			DllPath:     rec.DllPath,
			TlbPath:     rec.TlbPath,
			PSDllPath:   rec.PSDllPath,
			Attributes:  attributesOf(rec),
		}
		idx := r.set.Assemblies.Len()
		for ci, c := range rec.Components {
			if _, dup := r.set.components[c.Key]; dup {
				return fmt.Errorf("duplicate component key '%s' in assembly '%s'", c.Key, rec.Key)
			}
			r.set.components[c.Key] = ComponentRef{Assembly: idx, Component: ci}
			asm.Components = append(asm.Components, componentOf(c))
		}
		if err := add(&r.set.Assemblies, rec.Key, asm); err != nil {
			for _, c := range rec.Components {
				delete(r.set.components, c.Key)
			}
			return err
		}
	}
	return nil
}

func (r *reader) skipComponents(rec *config.Assembly) {
	for _, c := range rec.Components {
		r.skippedCmp[c.Key] = struct{}{}
	}
}

func attributesOf(rec *config.Assembly) Attributes {
	var a Attributes
	if rec.EventClass {
		a |= AttrEventClass
	}
	if rec.DotNet {
		a |= AttrDotNet
	}
	if rec.DllPathFromGAC {
		a |= AttrDllPathFromGAC
	}
	if rec.RunInCommit {
		a |= AttrRunInCommit
	}
	return a
}

func componentOf(c *config.Component) Component {
	out := Component{Key: c.Key, CLSID: c.CLSID, Properties: c.Properties}
	for _, i := range c.Interfaces {
		iface := Interface{Key: i.Key, IID: i.IID, Properties: i.Properties}
		for _, m := range i.Methods {
			idx := None
			if m.Index != nil {
				idx = *m.Index
			}
			iface.Methods = append(iface.Methods, Method{
				Key: m.Key, Index: idx, Name: m.Name, Properties: m.Properties,
			})
		}
		out.Interfaces = append(out.Interfaces, iface)
	}
	return out
}

func (r *reader) readRoleAssignments(m *config.Model) error {
	for _, rec := range m.RoleAssignments {
		st, keep, err := r.state(KindRoleAssignment, rec.Key, rec.Unit)
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		target, err := keypath.Parse(rec.Target)
		if err != nil {
			return fmt.Errorf("role_assignment '%s' has invalid target: %w", rec.Key, err)
		}
		ref, ok := r.set.components[target.Component]
		if !ok {
			if _, skipped := r.skippedCmp[target.Component]; skipped {
				r.skip(KindRoleAssignment, rec.Key)
				continue
			}
			return &ReferenceError{Kind: KindRoleAssignment, Key: rec.Key, Field: "component", Ref: target.Component}
		}
		role, skip, err := parent(r, &r.set.ApplicationRoles, KindRoleAssignment, rec.Key, rec.Role, false)
		if err != nil {
			return err
		}
		if skip {
			continue
		}

		idx := r.set.RoleAssignments.Len()
		roles, err := r.rolesOf(ref, target, rec.Key)
		if err != nil {
			return err
		}
		if err := add(&r.set.RoleAssignments, rec.Key, RoleAssignment{
			State: st, Assembly: ref.Assembly, Target: target, ApplicationRole: role,
		}); err != nil {
			return err
		}
		*roles = append(*roles, idx)
	}
	return nil
}

// rolesOf returns the role list of the component, interface or method the
// target path addresses.
func (r *reader) rolesOf(ref ComponentRef, target keypath.Path, key string) (*[]int, error) {
	c := &r.set.Assemblies.At(ref.Assembly).Components[ref.Component]
	if target.Level() == keypath.LevelComponent {
		return &c.Roles, nil
	}
	for ii := range c.Interfaces {
		iface := &c.Interfaces[ii]
		if iface.Key != target.Interface {
			continue
		}
		if target.Level() == keypath.LevelInterface {
			return &iface.Roles, nil
		}
		for mi := range iface.Methods {
			if iface.Methods[mi].Key == target.Method {
				return &iface.Methods[mi].Roles, nil
			}
		}
		return nil, &ReferenceError{Kind: KindRoleAssignment, Key: key, Field: "method", Ref: target.String()}
	}
	return nil, &ReferenceError{Kind: KindRoleAssignment, Key: key, Field: "interface", Ref: target.String()}
}

func (r *reader) readSubscriptions(m *config.Model) error {
	for _, rec := range m.Subscriptions {
		st, keep, err := r.state(KindSubscription, rec.Key, rec.Unit)
		if err != nil {
			return err
		}
		if !keep {
			continue
		}
		ref, ok := r.set.components[rec.Component]
		if !ok {
			if _, skipped := r.skippedCmp[rec.Component]; skipped {
				r.skip(KindSubscription, rec.Key)
				continue
			}
			return &ReferenceError{Kind: KindSubscription, Key: rec.Key, Field: "component", Ref: rec.Component}
		}
		if err := add(&r.set.Subscriptions, rec.Key, Subscription{
			State:       st,
			Assembly:    ref.Assembly,
			Component:   rec.Component,
			ID:          rec.ID,
			Name:        rec.Name,
			EventCLSID:  rec.EventCLSID,
			PublisherID: rec.PublisherID,
			Properties:  rec.Properties,
		}); err != nil {
			return err
		}
	}
	return nil
}

// readEdges records dependency declarations. Edges touching a skipped
// assembly are dropped; edges to undeclared entities are kept so that the
// sorter reports them as dangling.
func (r *reader) readEdges(m *config.Model) error {
	for _, rec := range m.Modules {
		for _, dep := range rec.DependsOn {
			r.set.ModuleEdges = append(r.set.ModuleEdges, Edge{From: rec.Key, To: dep})
		}
	}
	for _, rec := range m.Assemblies {
		if _, ok := r.set.Assemblies.Lookup(rec.Key); !ok {
			continue
		}
		for _, dep := range rec.DependsOn {
			if r.isSkipped(KindAssembly, dep) {
				continue
			}
			r.set.AssemblyEdges = append(r.set.AssemblyEdges, Edge{From: rec.Key, To: dep})
		}
	}
	return nil
}
