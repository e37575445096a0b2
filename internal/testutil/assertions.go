package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/catalogplan/internal/localexecutor"
)

// SpooledActions returns the action names found in the run's spool index,
// in spool order.
func SpooledActions(t *testing.T, result *HarnessResult) []string {
	t.Helper()

	idx, err := localexecutor.ReadIndex(result.SpoolDir)
	require.NoError(t, err)
	names := make([]string, 0, len(idx.Batches))
	for _, e := range idx.Batches {
		names = append(names, e.Action)
	}
	return names
}

// RequireSucceeded fails the test with the captured log when the run failed.
func RequireSucceeded(t *testing.T, result *HarnessResult) {
	t.Helper()
	require.NoError(t, result.Err, "run failed, log output:\n%s", result.LogOutput)
}
