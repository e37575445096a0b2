package app_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/catalogplan/internal/actionbuf"
	"github.com/vk/catalogplan/internal/app"
	"github.com/vk/catalogplan/internal/ctxlog"
	"github.com/vk/catalogplan/internal/hcl_adapter"
	"github.com/vk/catalogplan/internal/localexecutor"
	"github.com/vk/catalogplan/internal/testutil"
	"github.com/vk/catalogplan/internal/verify"
)

const manifest = `
install_unit "core" {
  architecture = "x64"
  request      = "install"
}

application "calc" {
  unit = "core"
  name = "Calculator"
}

application_role "users" {
  unit        = "core"
  application = "calc"
  name        = "Users"
}

module "base" {}

assembly "calc" {
  unit          = "core"
  module        = "base"
  application   = "calc"
  dll_path      = "bin/calc.dll"
  run_in_commit = true

  component "adder" {
    clsid = "{C1}"
  }
}

role_assignment "adder_users" {
  unit   = "core"
  role   = "users"
  target = adder
}
`

var installActions = []string{
	"CatalogRollbackPrepare",
	"CatalogInstallRollback",
	"CatalogInstallExecute",
	"CatalogInstallExecuteCommit",
	"CatalogCommit",
}

func section(t *testing.T, sections []actionbuf.Section, op string) actionbuf.Section {
	t.Helper()
	for _, s := range sections {
		if s.Operation == op {
			return s
		}
	}
	require.Failf(t, "section not found", "no %s section", op)
	return actionbuf.Section{}
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     app.Config
		wantErr string
	}{
		{name: "defaults direction", cfg: app.Config{ManifestPaths: []string{"m"}, SpoolDir: "s"}},
		{name: "no manifests", cfg: app.Config{SpoolDir: "s"}, wantErr: "manifest path"},
		{name: "no spool", cfg: app.Config{ManifestPaths: []string{"m"}}, wantErr: "SpoolDir"},
		{name: "bad direction", cfg: app.Config{ManifestPaths: []string{"m"}, SpoolDir: "s", Direction: "sideways"}, wantErr: "unknown direction"},
		{
			name:    "seed with store",
			cfg:     app.Config{ManifestPaths: []string{"m"}, SpoolDir: "s", CatalogPath: "db", CatalogSeed: "c.yaml"},
			wantErr: "in-memory catalog",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := app.NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, app.DirectionBoth, cfg.Direction)
			assert.Len(t, cfg.Directions(), 2)
		})
	}
}

func TestRun_Install(t *testing.T) {
	result := testutil.Harness{Manifests: map[string]string{"main.hcl": manifest}}.Run(t)
	testutil.RequireSucceeded(t, result)

	require.Len(t, result.Report.Plans, 2)
	assert.True(t, result.Report.Plans[0].Empty(), "nothing is uninstalled")
	install := result.Report.Plans[1]
	assert.NotEmpty(t, install.RollbackFile)
	assert.Equal(t, installActions, testutil.SpooledActions(t, result))

	calc := result.Report.Set.Applications.At(0)
	assert.NotEmpty(t, calc.ID, "a new application gets an identifier")

	batches, err := app.Inspect(result.SpoolDir)
	require.NoError(t, err)
	require.Len(t, batches, 5)
	assert.Empty(t, batches[0].Sections, "rollback prepare carries no buffer")

	deferred := section(t, batches[2].Sections, "CreateApplications")
	require.Len(t, deferred.Items, 1)
	assert.Equal(t, "calc", deferred.Items[0].Node.Fields[0])

	commit := section(t, batches[3].Sections, "RegisterAssemblies")
	require.Len(t, commit.Items, 1)
	assert.Equal(t, "calc", commit.Items[0].Node.Fields[0])
}

func TestRun_NameConflict(t *testing.T) {
	const seed = `
objects:
  - collection: applications
    id: "{A1}"
    name: Calculator
`

	t.Run("abort by default", func(t *testing.T) {
		result := testutil.Harness{
			Manifests: map[string]string{"main.hcl": manifest},
			Catalog:   seed,
			Direction: app.DirectionInstall,
		}.Run(t)

		require.Error(t, result.Err)
		var aborted *verify.ConflictAbortedError
		require.ErrorAs(t, result.Err, &aborted)
		assert.Equal(t, "calc", aborted.Key)
		assert.Empty(t, testutil.SpooledActions(t, result), "nothing is spooled on failure")
	})

	t.Run("ignore adopts the identifier", func(t *testing.T) {
		result := testutil.Harness{
			Manifests: map[string]string{"main.hcl": manifest},
			Catalog:   seed,
			Settings:  "policy:\n  conflicts: ignore\n",
			Direction: app.DirectionInstall,
		}.Run(t)

		testutil.RequireSucceeded(t, result)
		assert.Equal(t, "{A1}", result.Report.Set.Applications.At(0).ID)
		assert.Equal(t, installActions, testutil.SpooledActions(t, result))
	})
}

func TestRun_BothDirections(t *testing.T) {
	const manifest = `
install_unit "old" {
  architecture = "x64"
  installed    = true
  request      = "remove"
}

install_unit "core" {
  architecture = "x64"
  request      = "install"
}

application "legacy" {
  unit = "old"
  id   = "{L1}"
  name = "Legacy"
}

application "calc" {
  unit = "core"
  name = "Calculator"
}
`
	const seed = `
objects:
  - collection: applications
    id: "{L1}"
    name: Legacy
  - collection: applications
    id: "{A1}"
    name: Calculator
`
	spooledDirections := func(t *testing.T, result *testutil.HarnessResult) []string {
		t.Helper()
		idx, err := localexecutor.ReadIndex(result.SpoolDir)
		require.NoError(t, err)
		var dirs []string
		for _, e := range idx.Batches {
			if !slices.Contains(dirs, e.Direction) {
				dirs = append(dirs, e.Direction)
			}
		}
		return dirs
	}

	t.Run("install conflict leaves the spool empty", func(t *testing.T) {
		result := testutil.Harness{
			Manifests: map[string]string{"main.hcl": manifest},
			Catalog:   seed,
		}.Run(t)

		var aborted *verify.ConflictAbortedError
		require.ErrorAs(t, result.Err, &aborted)
		assert.Equal(t, "calc", aborted.Key)
		assert.Nil(t, result.Report)
		assert.Empty(t, testutil.SpooledActions(t, result))
		assert.NoDirExists(t, result.SpoolDir)
	})

	t.Run("both passes spooled together", func(t *testing.T) {
		result := testutil.Harness{
			Manifests: map[string]string{"main.hcl": manifest},
			Catalog:   seed,
			Settings:  "policy:\n  conflicts: ignore\n",
		}.Run(t)

		testutil.RequireSucceeded(t, result)
		require.Len(t, result.Report.Plans, 2)
		assert.Equal(t, []string{"uninstall", "install"}, spooledDirections(t, result))
	})
}

func TestRun_ForeignArchitecture(t *testing.T) {
	result := testutil.Harness{
		Manifests:    map[string]string{"main.hcl": manifest},
		Architecture: "x86",
	}.Run(t)

	testutil.RequireSucceeded(t, result)
	for _, p := range result.Report.Plans {
		assert.True(t, p.Empty())
	}
	assert.Empty(t, testutil.SpooledActions(t, result))
}

func TestRun_MetricsAndTraces(t *testing.T) {
	dir := t.TempDir()
	manifestPath := testutil.WriteFile(t, filepath.Join(dir, "main.hcl"), manifest)

	cfg, err := app.NewConfig(app.Config{
		ManifestPaths: []string{manifestPath},
		SpoolDir:      filepath.Join(dir, "spool"),
		Direction:     app.DirectionInstall,
		MetricsFile:   filepath.Join(dir, "metrics.prom"),
		TraceFile:     filepath.Join(dir, "trace.json"),
		LogLevel:      "error",
	})
	require.NoError(t, err)

	a, err := app.NewApp(&testutil.SafeBuffer{}, cfg, hcl_adapter.NewLoader())
	require.NoError(t, err)
	_, err = a.Run(context.Background())
	require.NoError(t, err)

	metrics, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "catalogplan_actions_emitted_total")

	traces, err := os.ReadFile(cfg.TraceFile)
	require.NoError(t, err)
	assert.Contains(t, string(traces), `"Name": "plan"`)
}

func TestRenderReport(t *testing.T) {
	result := testutil.Harness{
		Manifests: map[string]string{"main.hcl": manifest},
		Direction: app.DirectionInstall,
	}.Run(t)
	testutil.RequireSucceeded(t, result)

	var out testutil.SafeBuffer
	app.RenderReport(&out, result.Report)
	assert.Contains(t, out.String(), "CatalogInstallExecuteCommit")
	assert.Contains(t, out.String(), result.SpoolDir)

	batches, err := app.Inspect(result.SpoolDir)
	require.NoError(t, err)
	var inspected testutil.SafeBuffer
	app.RenderInspection(&inspected, batches)
	assert.Contains(t, inspected.String(), "RegisterAssemblies")
	assert.Contains(t, inspected.String(), "create")
}

func TestCatalogImportAndList(t *testing.T) {
	dir := t.TempDir()
	seed := testutil.WriteFile(t, filepath.Join(dir, "catalog.yaml"), `
objects:
  - collection: partitions
    id: "{P1}"
    name: Base
  - collection: applications
    parent: "{P1}"
    id: "{A1}"
    name: Calculator
`)
	store := filepath.Join(dir, "db")
	ctx := ctxlog.Discard(context.Background())

	n, err := app.ImportCatalog(ctx, store, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := app.ListCatalog(ctx, store)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	var out testutil.SafeBuffer
	app.RenderEntries(&out, entries)
	assert.Contains(t, out.String(), "Calculator")
}
