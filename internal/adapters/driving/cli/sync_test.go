package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncCmd_SkipsUnconfiguredSources(t *testing.T) {
	out, err := executeCLI(t, t.TempDir(), t.TempDir(), "sync")

	require.NoError(t, err)
	assert.Contains(t, out, "stripe")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "Total: 0 rows written")
}

func TestSyncCmd_SingleSource(t *testing.T) {
	out, err := executeCLI(t, t.TempDir(), t.TempDir(), "sync", "carbon")

	require.NoError(t, err)
	assert.Contains(t, out, "carbon")
	assert.NotContains(t, out, "stripe")
}

func TestSyncCmd_UnknownSource(t *testing.T) {
	_, err := executeCLI(t, t.TempDir(), t.TempDir(), "sync", "bogus")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestSyncCmd_InvalidSince(t *testing.T) {
	_, err := executeCLI(t, t.TempDir(), t.TempDir(), "sync", "--since", "not-a-date")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--since")
}

func TestSyncCmd_ExplicitWindow(t *testing.T) {
	out, err := executeCLI(t, t.TempDir(), t.TempDir(),
		"sync", "--since", "2024-01-01", "--until", "2024-01-31")

	require.NoError(t, err)
	assert.Contains(t, out, "Total: 0 rows written")
}

func TestSyncCmd_WindowEndBeforeStart(t *testing.T) {
	_, err := executeCLI(t, t.TempDir(), t.TempDir(),
		"sync", "--since", "2024-02-01", "--until", "2024-01-01")

	require.Error(t, err)
}

func TestSyncCmd_DryRunPersistsNothing(t *testing.T) {
	configDir, dataDir := t.TempDir(), t.TempDir()

	out, err := executeCLI(t, configDir, dataDir, "sync", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run: nothing persisted")

	out, err = executeCLI(t, configDir, dataDir, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded yet.")
}

func TestParseWhen(t *testing.T) {
	date, err := parseWhen("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15T00:00:00Z", date.Format("2006-01-02T15:04:05Z07:00"))

	stamp, err := parseWhen("2024-03-15T12:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 12, stamp.Hour())

	_, err = parseWhen("15/03/2024")
	assert.Error(t, err)
}
