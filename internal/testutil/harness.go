// Package testutil provides a harness that runs the planning pipeline over
// manifests written into a temporary directory.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/catalogplan/internal/app"
	"github.com/vk/catalogplan/internal/decision"
	"github.com/vk/catalogplan/internal/hcl_adapter"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Harness describes one pipeline run. Manifests maps file names relative to
// the manifest directory to their HCL content.
type Harness struct {
	Manifests    map[string]string
	Catalog      string // YAML seed of the in-memory catalog
	Settings     string // YAML settings file
	Direction    string
	Architecture string
	Decider      decision.Decider
}

// HarnessResult holds the outcomes of a pipeline run.
type HarnessResult struct {
	LogOutput string
	Err       error
	Report    *app.Report
	SpoolDir  string
	App       *app.App
}

// Run writes the harness files into t.TempDir() and runs the app.
func (h Harness) Run(t *testing.T) *HarnessResult {
	t.Helper()
	return h.RunWithContext(context.Background(), t)
}

// RunWithContext is Run with a caller supplied context.
func (h Harness) RunWithContext(ctx context.Context, t *testing.T) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	manifestDir := filepath.Join(tmpDir, "manifests")
	for name, content := range h.Manifests {
		WriteFile(t, filepath.Join(manifestDir, name), content)
	}

	cfg := app.Config{
		ManifestPaths: []string{manifestDir},
		SpoolDir:      filepath.Join(tmpDir, "spool"),
		Direction:     h.Direction,
		Architecture:  h.Architecture,
		LogLevel:      "debug",
		LogFormat:     "text",
	}
	if h.Catalog != "" {
		cfg.CatalogSeed = WriteFile(t, filepath.Join(tmpDir, "catalog.yaml"), h.Catalog)
	}
	if h.Settings != "" {
		cfg.SettingsPath = WriteFile(t, filepath.Join(tmpDir, "settings.yaml"), h.Settings)
	}

	logBuffer := &SafeBuffer{}
	result := &HarnessResult{SpoolDir: cfg.SpoolDir}
	defer func() {
		result.LogOutput = logBuffer.String()
		if os.Getenv("CATALOGPLAN_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), result.LogOutput)
		}
	}()

	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	var opts []app.Option
	if h.Decider != nil {
		opts = append(opts, app.WithDecider(h.Decider))
	}
	result.App, result.Err = app.NewApp(logBuffer, appConfig, hcl_adapter.NewLoader(), opts...)
	if result.Err != nil {
		return result
	}
	result.Report, result.Err = result.App.Run(ctx)
	return result
}

// WriteFile writes content to path, creating parent directories, and
// returns path.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
