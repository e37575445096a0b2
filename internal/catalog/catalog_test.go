package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGUID(t *testing.T) {
	re := regexp.MustCompile(`^\{[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}\}$`)
	a, b := NewGUID(), NewGUID()
	assert.Regexp(t, re, a)
	assert.NotEqual(t, a, b)
}

func TestSameID(t *testing.T) {
	assert.True(t, SameID("{abc}", "ABC"))
	assert.False(t, SameID("{abc}", "{abd}"))
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "ok.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
objects:
  - collection: partitions
    id: "{P}"
    name: Base
  - collection: applications
    parent: "{P}"
    id: "{A}"
    name: Calc
`), 0o644))

		entries, err := LoadFile(path)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, Container{Collection: Applications, Parent: "{P}"}, entries[1].Container())
	})

	t.Run("invalid", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
objects:
  - collection: widgets
    id: "{W}"
    name: W
  - collection: roles
    name: NoID
`), 0o644))

		_, err := LoadFile(path)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownCollection))
		assert.ErrorContains(t, err, "object 1: id and name are required")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(dir, "nope.yaml"))
		assert.ErrorContains(t, err, "failed to read catalog file")
	})
}
