package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/catalogplan/internal/actionbuf"
	"github.com/vk/catalogplan/internal/config"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/entity"
	"github.com/vk/catalogplan/internal/settings"
)

func model(request string, installed bool) *config.Model {
	return &config.Model{
		Units: []*config.InstallUnit{
			{Name: "core", Request: request, Installed: installed},
			{Name: "base", Installed: true},
		},
		Applications: []*config.Application{{
			Key: "app", Unit: "core", Name: "Calc",
			Properties: []config.Property{{Name: "Activation", Value: "Local"}},
		}},
		ApplicationRoles: []*config.ApplicationRole{{Key: "users", Unit: "core", Application: "app", Name: "Users"}},
		Assemblies: []*config.Assembly{
			{
				Key: "calc", Unit: "core", Application: "app", DllPath: "calc.dll",
				Components: []*config.Component{{Key: "adder", CLSID: "{C1}"}},
			},
			{
				Key: "late", Unit: "core", Application: "app", DllPath: "late.dll", RunInCommit: true,
				Components: []*config.Component{{Key: "notifier", CLSID: "{C2}"}},
			},
			{
				Key: "shared", Unit: "base", Application: "app", DllPath: "shared.dll",
				Components: []*config.Component{
					{Key: "logger", CLSID: "{C3}"},
					{Key: "unused", CLSID: "{C4}"},
				},
			},
		},
		RoleAssignments: []*config.RoleAssignment{
			{Key: "ra-calc", Unit: "core", Role: "users", Target: "adder"},
			{Key: "ra-shared", Unit: "core", Role: "users", Target: "logger"},
		},
		Subscriptions: []*config.Subscription{
			{Key: "sub", Unit: "core", Component: "notifier", Name: "OnNotify"},
		},
	}
}

func readSet(t *testing.T, m *config.Model) *entity.Set {
	t.Helper()
	set, err := entity.Read(ctxlog.Discard(context.Background()), entity.NewModelSource(m, ""))
	require.NoError(t, err)
	set.Applications.At(0).ID = "{APP}"
	return set
}

func build(t *testing.T, set *entity.Set, d entity.Direction, p Phase) (*Result, []actionbuf.Section) {
	t.Helper()
	res, err := Build(ctxlog.Discard(context.Background()), Request{
		Direction: d,
		Phase:     p,
		Set:       set,
		Settings:  settings.Default(),
	})
	require.NoError(t, err)
	sections, err := actionbuf.Decode(res.Buffer)
	require.NoError(t, err)
	require.Len(t, sections, len(entity.ScheduledKinds), "every kind gets a section")
	return res, sections
}

func section(t *testing.T, sections []actionbuf.Section, op string) actionbuf.Section {
	t.Helper()
	for _, s := range sections {
		if s.Operation == op {
			return s
		}
	}
	require.Failf(t, "section not found", "operation %s", op)
	return actionbuf.Section{}
}

func keys(s actionbuf.Section) []string {
	var out []string
	for _, it := range s.Items {
		out = append(out, it.Node.Fields[0].(string))
	}
	return out
}

func TestBuild_InstallDeferred(t *testing.T) {
	set := readSet(t, model("install", false))
	res, sections := build(t, set, entity.DirectionInstall, DeferredExecute)

	assert.Equal(t, "CreatePartitions", sections[0].Operation)
	assert.Equal(t, "CreateSubscriptions", sections[len(sections)-1].Operation)

	apps := section(t, sections, "CreateApplications")
	require.Len(t, apps.Items, 1)
	app := apps.Items[0]
	assert.Equal(t, int(Create), app.Action)
	assert.Equal(t, 10000, app.Cost)
	assert.Equal(t, []any{"app", "", "{APP}", "Calc"}, app.Node.Fields)
	assert.Equal(t, []actionbuf.Node{actionbuf.Leaf("property", "Activation", "Local")}, app.Node.Children)

	asm := section(t, sections, "RegisterAssemblies")
	assert.Equal(t, []string{"calc"}, keys(asm), "commit assemblies are left to the commit buffer")
	comp := asm.Items[0].Node.Children[0]
	assert.Equal(t, []any{"component", "adder", "{C1}"}, comp.Fields)
	assert.Equal(t, []actionbuf.Node{actionbuf.Leaf("role", "ra-calc", "Users")}, comp.Children)

	roles := section(t, sections, "AddRoleAssignments")
	require.Equal(t, []string{"shared"}, keys(roles), "only assemblies that stay registered")
	require.Len(t, roles.Items[0].Node.Children, 1, "components without roles are pruned")
	assert.Equal(t, "logger", roles.Items[0].Node.Children[0].Fields[1])

	assert.Empty(t, section(t, sections, "CreateSubscriptions").Items)

	assert.Equal(t, 1, res.Emitted[entity.KindAssembly][Create])
	assert.Equal(t, 10000+5000+50000+1000, res.Progress)
}

func TestBuild_InstallCommit(t *testing.T) {
	set := readSet(t, model("install", false))
	_, sections := build(t, set, entity.DirectionInstall, CommitExecute)

	assert.Equal(t, []string{"late"}, keys(section(t, sections, "RegisterAssemblies")))
	assert.Equal(t, []string{"sub"}, keys(section(t, sections, "CreateSubscriptions")))
	assert.Empty(t, section(t, sections, "CreateApplications").Items)
	assert.Empty(t, section(t, sections, "AddRoleAssignments").Items)
}

func TestBuild_InstallRollback(t *testing.T) {
	t.Run("fresh install is undone in reverse", func(t *testing.T) {
		set := readSet(t, model("install", false))
		_, sections := build(t, set, entity.DirectionInstall, RollbackExecute)

		assert.Equal(t, "RemoveSubscriptions", sections[0].Operation)
		asm := section(t, sections, "UnregisterAssemblies")
		assert.Equal(t, []string{"late", "calc"}, keys(asm))
		for _, it := range asm.Items {
			assert.Equal(t, int(Remove), it.Action)
			assert.Empty(t, it.Node.Children)
		}
		assert.Equal(t, []string{"sub"}, keys(section(t, sections, "RemoveSubscriptions")))
	})

	t.Run("reinstall leaves existing objects alone", func(t *testing.T) {
		set := readSet(t, model("install", true))
		res, sections := build(t, set, entity.DirectionInstall, RollbackExecute)

		apps := section(t, sections, "RemoveApplications")
		require.Len(t, apps.Items, 1)
		assert.Equal(t, int(NoOp), apps.Items[0].Action)
		assert.Equal(t, 0, apps.Items[0].Cost)
		assert.Empty(t, apps.Items[0].Node.Children)
		assert.Zero(t, res.Emitted[entity.KindApplication][Remove])
	})
}

func TestBuild_Uninstall(t *testing.T) {
	set := readSet(t, model("remove", true))
	set.ApplicationRoles.At(0).ObjectNotFound = true

	res, sections := build(t, set, entity.DirectionUninstall, DeferredExecute)

	assert.Equal(t, "RemoveSubscriptions", sections[0].Operation)
	assert.Equal(t, "RemovePartitions", sections[len(sections)-1].Operation)
	assert.Empty(t, section(t, sections, "RemoveApplicationRoles").Items, "objects missing from the catalog are skipped")

	apps := section(t, sections, "RemoveApplications")
	require.Len(t, apps.Items, 1)
	assert.Equal(t, int(Remove), apps.Items[0].Action)
	assert.Empty(t, apps.Items[0].Node.Children, "removals carry no properties")
	assert.Equal(t, 5000, apps.Items[0].Cost)

	assert.Equal(t, []string{"calc"}, keys(section(t, sections, "UnregisterAssemblies")))
	assert.Equal(t, 1, res.Emitted[entity.KindRoleAssignment][Remove])
}

func TestBuild_Errors(t *testing.T) {
	set := readSet(t, model("install", false))
	ctx := ctxlog.Discard(context.Background())

	_, err := Build(ctx, Request{Phase: Commit, Set: set, Settings: settings.Default()})
	assert.ErrorContains(t, err, "carries no action buffer")

	_, err = Build(ctx, Request{Phase: DeferredExecute, Settings: settings.Default()})
	assert.Error(t, err)
}
