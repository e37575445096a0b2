package app

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/catalogplan/internal/decision"
)

func TestNewApp_InteractiveDecider(t *testing.T) {
	newPrompt := func(t *testing.T, in io.Reader) *decision.Prompt {
		t.Helper()
		cfg, err := NewConfig(Config{
			ManifestPaths: []string{"unused.hcl"},
			SpoolDir:      filepath.Join(t.TempDir(), "spool"),
			Interactive:   true,
		})
		require.NoError(t, err)

		a, err := NewApp(io.Discard, cfg, nil, WithInput(in))
		require.NoError(t, err)
		p, ok := a.decider.(*decision.Prompt)
		require.True(t, ok, "decider is %T", a.decider)
		return p
	}

	t.Run("piped input is accessible", func(t *testing.T) {
		p := newPrompt(t, strings.NewReader("abort\n"))
		assert.True(t, p.Accessible)
	})

	t.Run("regular file is accessible", func(t *testing.T) {
		f, err := os.Create(filepath.Join(t.TempDir(), "answers"))
		require.NoError(t, err)
		t.Cleanup(func() { f.Close() })

		p := newPrompt(t, f)
		assert.True(t, p.Accessible)
	})
}
