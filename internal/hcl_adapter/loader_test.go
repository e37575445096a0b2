package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/catalogplan/internal/config"
	"github.com/vk/catalogplan/internal/ctxlog"
)

const manifest = `
install_unit "core" {
  architecture = "x64"
  request      = "install"
}

application "calc" {
  unit       = "core"
  name       = "Calculator"
  properties = {
    Activation = "Local"
    MaxPool    = 10
    Queued     = true
  }
}

application_role "users" {
  unit        = "core"
  application = "calc"
  name        = "Users"
}

module "base" {}

module "ui" {
  depends_on = [base]
}

assembly "calc" {
  unit          = "core"
  module        = "base"
  application   = "calc"
  dll_path      = "bin/calc.dll"
  run_in_commit = true

  component "adder" {
    clsid = "{C1}"

    interface "iadd" {
      iid = "{I1}"

      method "sum" {
        index = 3
      }
    }
  }
}

role_assignment "sum_users" {
  unit   = "core"
  role   = "users"
  target = adder.iadd.sum
}
`

func write(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func load(t *testing.T, paths ...string) (*config.Model, error) {
	t.Helper()
	return NewLoader().Load(ctxlog.Discard(context.Background()), paths...)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "main.hcl", manifest)
	write(t, dir, "extra.hcl", `
assembly "ui" {
  unit       = "core"
  module     = "ui"
  dll_path   = "bin/ui.dll"
  depends_on = ["calc"]
}
`)
	write(t, dir, "README.md", "not a manifest")

	m, err := load(t, dir)
	require.NoError(t, err)

	require.Len(t, m.Units, 1)
	assert.Equal(t, "x64", m.Units[0].Architecture)

	require.Len(t, m.Applications, 1)
	assert.Equal(t, []config.Property{
		{Name: "Activation", Value: "Local"},
		{Name: "MaxPool", Value: "10"},
		{Name: "Queued", Value: "true"},
	}, m.Applications[0].Properties)

	require.Len(t, m.Modules, 2)
	assert.Empty(t, m.Modules[0].DependsOn)
	assert.Equal(t, []string{"base"}, m.Modules[1].DependsOn)

	require.Len(t, m.Assemblies, 2)
	assert.Equal(t, "ui", m.Assemblies[0].Key, "extra.hcl sorts before main.hcl")
	assert.Equal(t, []string{"calc"}, m.Assemblies[0].DependsOn)
	calc := m.Assemblies[1]
	assert.True(t, calc.RunInCommit)
	require.Len(t, calc.Components, 1)
	method := calc.Components[0].Interfaces[0].Methods[0]
	require.NotNil(t, method.Index)
	assert.Equal(t, 3, *method.Index)

	require.Len(t, m.RoleAssignments, 1)
	assert.Equal(t, "adder.iadd.sum", m.RoleAssignments[0].Target)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr string
	}{
		{
			name:    "syntax",
			src:     `application "calc" {`,
			wantErr: "failed to parse HCL file",
		},
		{
			name:    "unknown attribute",
			src:     `install_unit "core" { color = "red" }`,
			wantErr: "failed to decode HCL file",
		},
		{
			name:    "nested properties",
			src: `
application "calc" {
  name       = "Calc"
  properties = { a = { b = 1 } }
}`,
			wantErr: "must map names to primitive values",
		},
		{
			name:    "validation",
			src:     `install_unit "core" { architecture = "sparc" }`,
			wantErr: "Architecture",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := write(t, t.TempDir(), "main.hcl", tt.src)
			_, err := load(t, path)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_NoManifests(t *testing.T) {
	_, err := load(t, filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "no .hcl manifests found")
}
